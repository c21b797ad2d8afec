package core

import (
	"context"

	"github.com/okechi-dev/summarly/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	// CreateSummary rejects records missing owner_id, source_type, or a
	// non-empty summary_text, and assigns id/created_at when unset.
	CreateSummary(ctx context.Context, s *models.Summary) error

	// GetSummaryForOwner filters by owner at the query level. A record owned
	// by someone else is indistinguishable from a missing one: both come
	// back as errs.NotFound.
	GetSummaryForOwner(ctx context.Context, id, ownerID string) (*models.Summary, error)

	// ListSummariesForOwner returns the owner's summaries newest first,
	// without summary_text.
	ListSummariesForOwner(ctx context.Context, ownerID string) ([]models.SummaryListing, error)

	// InsertSummaryEmbedding stores the embedding vector for a persisted
	// summary so it becomes reachable via semantic search.
	InsertSummaryEmbedding(ctx context.Context, summaryID string, vec []float32) error

	// SearchSummariesForOwner runs a nearest-neighbour scan over the owner's
	// summary embeddings.
	SearchSummariesForOwner(ctx context.Context, ownerID string, queryVec []float32, limit int) ([]models.SummaryListing, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// LLMProvider is the generation capability the summarizer and artifact
// generator are built on. Swapping the vendor never touches pipeline logic.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// EmbeddingProvider turns texts into vectors for the semantic search path.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Source is the tagged input of an ingestion request. Kind decides which
// extractor runs; sniffing only ever validates, it never classifies.
type Source struct {
	Kind     models.SourceType
	Bytes    []byte // pdf payload
	FileName string // pdf display name, best-effort
	URL      string // youtube payload
}

// ExtractedContent is normalized UTF-8 text plus a best-effort title.
type ExtractedContent struct {
	Text  string
	Title string
	Pages int // pdf page count; zero for transcripts
}

// SourceExtractor converts one raw source into normalized text. It reads
// the external source and nothing else: no partial writes anywhere.
type SourceExtractor interface {
	Extract(ctx context.Context, src Source) (*ExtractedContent, error)
}

// SummaryEngine produces a bounded-length summary from normalized text.
type SummaryEngine interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ArtifactGenerator derives transient study artifacts from a stored
// summary's text. Both operations are pure over their input; count of 0
// means "use the configured default".
type ArtifactGenerator interface {
	GenerateFlashcards(ctx context.Context, summaryText string, count int) ([]models.Flashcard, error)
	GenerateMCQs(ctx context.Context, summaryText string, count int) ([]models.MCQ, error)
}
