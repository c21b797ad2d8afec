package services

import (
	"context"
	"strings"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/models"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SummaryService is the read side: listing, retrieval, and semantic search
// over the caller's own summaries. Every query is scoped to the owner.
type SummaryService struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
}

func NewSummaryService(db core.DbClient, embedder core.EmbeddingProvider) *SummaryService {
	return &SummaryService{db: db, embedder: embedder}
}

func (s *SummaryService) List(ctx context.Context, ownerID string) ([]models.SummaryListing, error) {
	if ownerID == "" {
		return nil, errs.New(errs.Unauthenticated, "missing owner")
	}
	return s.db.ListSummariesForOwner(ctx, ownerID)
}

func (s *SummaryService) Get(ctx context.Context, ownerID, summaryID string) (*models.Summary, error) {
	if ownerID == "" {
		return nil, errs.New(errs.Unauthenticated, "missing owner")
	}
	return s.db.GetSummaryForOwner(ctx, summaryID, ownerID)
}

// Search embeds the query and runs a nearest-neighbour scan over the
// owner's summaries. limit of 0 means the default; anything above the cap
// is clamped.
func (s *SummaryService) Search(ctx context.Context, ownerID, query string, limit int) ([]models.SummaryListing, error) {
	if ownerID == "" {
		return nil, errs.New(errs.Unauthenticated, "missing owner")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.New(errs.EmptyInput, "empty search query")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	vecs, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, errs.Wrap(errs.UpstreamUnavailable, err)
	}
	if len(vecs) == 0 {
		return nil, errs.New(errs.UpstreamUnavailable, "embedder returned no vector")
	}

	return s.db.SearchSummariesForOwner(ctx, ownerID, vecs[0], limit)
}
