package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/models"
)

// IngestService runs the source-to-summary pipeline: extract, summarize,
// persist, in that order. Nothing is written until summarization has
// succeeded, so a failed request leaves no partial record behind.
//
// Archival of the raw source and embedding of the summary happen after the
// record is committed and are best-effort: their failure is logged, never
// surfaced, and never rolls the summary back.
type IngestService struct {
	db        core.DbClient
	obj       core.ObjectClient
	extractor core.SourceExtractor
	engine    core.SummaryEngine
	embedder  core.EmbeddingProvider
	bucket    string
}

func NewIngestService(db core.DbClient, obj core.ObjectClient, extractor core.SourceExtractor, engine core.SummaryEngine, embedder core.EmbeddingProvider, bucket string) *IngestService {
	return &IngestService{
		db:        db,
		obj:       obj,
		extractor: extractor,
		engine:    engine,
		embedder:  embedder,
		bucket:    bucket,
	}
}

// Ingest turns one tagged source into a persisted summary owned by ownerID.
func (s *IngestService) Ingest(ctx context.Context, ownerID string, src core.Source) (*models.Summary, error) {
	if ownerID == "" {
		return nil, errs.New(errs.Unauthenticated, "missing owner")
	}
	if !src.Kind.Valid() {
		return nil, errs.New(errs.InvalidSource, "unknown source kind %q", src.Kind)
	}

	content, err := s.extractor.Extract(ctx, src)
	if err != nil {
		return nil, errs.Stage("extracting", err)
	}

	summaryText, err := s.engine.Summarize(ctx, content.Text)
	if err != nil {
		return nil, errs.Stage("summarizing", err)
	}

	summary := &models.Summary{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       content.Title,
		SourceType:  src.Kind,
		SummaryText: summaryText,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateSummary(ctx, summary); err != nil {
		return nil, errs.Stage("persisting", err)
	}

	s.archiveSource(ctx, summary, src)
	s.embedSummary(ctx, summary)

	return summary, nil
}

// archiveSource keeps the raw PDF bytes in object storage for audit and
// re-ingestion. Only PDFs carry bytes; YouTube sources have nothing to keep.
func (s *IngestService) archiveSource(ctx context.Context, summary *models.Summary, src core.Source) {
	if s.obj == nil || src.Kind != models.SourcePDF || len(src.Bytes) == 0 {
		return
	}
	name := filepath.Base(src.FileName)
	if name == "" || name == "." {
		name = "source.pdf"
	}
	key := fmt.Sprintf("users/%s/summaries/%s/%s", summary.OwnerID, summary.ID, name)

	uploadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if _, err := s.obj.UploadFile(uploadCtx, s.bucket, key, src.Bytes, "application/pdf"); err != nil {
		log.Printf("WARN: archive source for summary %s: %v", summary.ID, err)
	}
}

// embedSummary stores the summary's embedding so it shows up in semantic
// search. A summary without an embedding is still fully readable.
func (s *IngestService) embedSummary(ctx context.Context, summary *models.Summary) {
	if s.embedder == nil {
		return
	}
	vecs, err := s.embedder.EmbedTexts(ctx, []string{summary.SummaryText})
	if err != nil || len(vecs) == 0 {
		log.Printf("WARN: embed summary %s: %v", summary.ID, err)
		return
	}
	if err := s.db.InsertSummaryEmbedding(ctx, summary.ID, vecs[0]); err != nil {
		log.Printf("WARN: store embedding for summary %s: %v", summary.ID, err)
	}
}
