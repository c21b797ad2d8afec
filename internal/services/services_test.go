package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/models"
)

// fakeStore is an in-memory DbClient with the same ownership semantics as
// the Postgres client: lookups filter by owner, and a foreign-owner hit is
// indistinguishable from a miss.
type fakeStore struct {
	users     map[string]*models.User
	summaries map[string]*models.Summary
	vectors   map[string][]float32

	createSummaryErr error
	creates          int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]*models.User{},
		summaries: map[string]*models.Summary{},
		vectors:   map[string][]float32{},
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, u *models.User) error {
	f.users[u.Email] = u
	return nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.users[email], nil
}

func (f *fakeStore) CreateSummary(ctx context.Context, s *models.Summary) error {
	f.creates++
	if f.createSummaryErr != nil {
		return f.createSummaryErr
	}
	cp := *s
	f.summaries[s.ID] = &cp
	return nil
}

func (f *fakeStore) GetSummaryForOwner(ctx context.Context, id, ownerID string) (*models.Summary, error) {
	s, ok := f.summaries[id]
	if !ok || s.OwnerID != ownerID {
		return nil, errs.New(errs.NotFound, "summary not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) ListSummariesForOwner(ctx context.Context, ownerID string) ([]models.SummaryListing, error) {
	var out []models.SummaryListing
	for _, s := range f.summaries {
		if s.OwnerID == ownerID {
			out = append(out, models.SummaryListing{ID: s.ID, Title: s.Title, SourceType: s.SourceType, CreatedAt: s.CreatedAt})
		}
	}
	return out, nil
}

func (f *fakeStore) InsertSummaryEmbedding(ctx context.Context, summaryID string, vec []float32) error {
	f.vectors[summaryID] = vec
	return nil
}

func (f *fakeStore) SearchSummariesForOwner(ctx context.Context, ownerID string, queryVec []float32, limit int) ([]models.SummaryListing, error) {
	listings, _ := f.ListSummariesForOwner(ctx, ownerID)
	if len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeExtractor struct {
	content *core.ExtractedContent
	err     error
}

func (f *fakeExtractor) Extract(ctx context.Context, src core.Source) (*core.ExtractedContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

type fakeEngine struct {
	summary string
	err     error
	calls   int
}

func (f *fakeEngine) Summarize(ctx context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{0.1, 0.2, 0.3}
	}
	return vecs, nil
}

type fakeGenerator struct {
	cards []models.Flashcard
	mcqs  []models.MCQ
	err   error
	calls int
}

func (f *fakeGenerator) GenerateFlashcards(ctx context.Context, summaryText string, count int) ([]models.Flashcard, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cards, nil
}

func (f *fakeGenerator) GenerateMCQs(ctx context.Context, summaryText string, count int) ([]models.MCQ, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.mcqs, nil
}

func pdfSource() core.Source {
	return core.Source{Kind: models.SourcePDF, Bytes: []byte("%PDF-1.4 ..."), FileName: "notes.pdf"}
}

func TestIngestPersistsSummary(t *testing.T) {
	store := newFakeStore()
	svc := NewIngestService(store,
		nil,
		&fakeExtractor{content: &core.ExtractedContent{Text: "atoms bond", Title: "Chem 101"}},
		&fakeEngine{summary: "Atoms bond to form molecules."},
		&fakeEmbedder{},
		"bucket")

	got, err := svc.Ingest(context.Background(), "owner-a", pdfSource())
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "owner-a", got.OwnerID)
	assert.Equal(t, "Chem 101", got.Title)
	assert.Equal(t, models.SourcePDF, got.SourceType)
	assert.Equal(t, "Atoms bond to form molecules.", got.SummaryText)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

	stored, err := store.GetSummaryForOwner(context.Background(), got.ID, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, got.SummaryText, stored.SummaryText)
	// Post-persist embedding ran for the new record.
	assert.Contains(t, store.vectors, got.ID)
}

func TestIngestRequiresOwner(t *testing.T) {
	svc := NewIngestService(newFakeStore(), nil, &fakeExtractor{}, &fakeEngine{}, nil, "bucket")

	_, err := svc.Ingest(context.Background(), "", pdfSource())
	assert.Equal(t, errs.Unauthenticated, errs.KindOf(err))
}

func TestIngestRejectsUnknownKind(t *testing.T) {
	svc := NewIngestService(newFakeStore(), nil, &fakeExtractor{}, &fakeEngine{}, nil, "bucket")

	_, err := svc.Ingest(context.Background(), "owner-a", core.Source{Kind: "torrent"})
	assert.Equal(t, errs.InvalidSource, errs.KindOf(err))
}

func TestIngestNoPartialPersistence(t *testing.T) {
	tests := []struct {
		name      string
		extractor core.SourceExtractor
		engine    core.SummaryEngine
		wantKind  errs.Kind
	}{
		{
			name:      "extraction fails",
			extractor: &fakeExtractor{err: errs.New(errs.UnreadableDocument, "no text layer")},
			engine:    &fakeEngine{},
			wantKind:  errs.UnreadableDocument,
		},
		{
			name:      "no transcript",
			extractor: &fakeExtractor{err: errs.New(errs.NoTranscriptAvailable, "video has no caption track")},
			engine:    &fakeEngine{},
			wantKind:  errs.NoTranscriptAvailable,
		},
		{
			name:      "summarization fails",
			extractor: &fakeExtractor{content: &core.ExtractedContent{Text: "some text", Title: "t"}},
			engine:    &fakeEngine{err: errs.New(errs.UpstreamUnavailable, "model down")},
			wantKind:  errs.UpstreamUnavailable,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			svc := NewIngestService(store, nil, tc.extractor, tc.engine, nil, "bucket")

			_, err := svc.Ingest(context.Background(), "owner-a", pdfSource())
			assert.Equal(t, tc.wantKind, errs.KindOf(err))
			assert.Empty(t, store.summaries, "a failed ingest must write nothing")
		})
	}
}

func TestIngestSurvivesEmbeddingFailure(t *testing.T) {
	store := newFakeStore()
	svc := NewIngestService(store,
		nil,
		&fakeExtractor{content: &core.ExtractedContent{Text: "some text", Title: "t"}},
		&fakeEngine{summary: "summary"},
		&fakeEmbedder{err: errs.New(errs.UpstreamUnavailable, "embedder down")},
		"bucket")

	got, err := svc.Ingest(context.Background(), "owner-a", pdfSource())
	require.NoError(t, err)
	assert.Contains(t, store.summaries, got.ID)
	assert.NotContains(t, store.vectors, got.ID)
}

func TestArtifactOwnershipIsolation(t *testing.T) {
	store := newFakeStore()
	store.summaries["s1"] = &models.Summary{ID: "s1", OwnerID: "owner-a", SummaryText: "Paris is the capital of France."}

	gen := &fakeGenerator{cards: []models.Flashcard{{Front: "Capital of France?", Back: "Paris"}}}
	svc := NewArtifactService(store, gen)

	cards, err := svc.Flashcards(context.Background(), "owner-a", "s1", 5)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	// Someone else's summary looks exactly like a missing one, and the
	// generator is never consulted for it.
	before := gen.calls
	_, err = svc.Flashcards(context.Background(), "owner-b", "s1", 5)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	_, err = svc.MCQs(context.Background(), "owner-b", "s1", 5)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	assert.Equal(t, before, gen.calls)
}

func TestArtifactsNeverMutateStore(t *testing.T) {
	store := newFakeStore()
	orig := &models.Summary{ID: "s1", OwnerID: "owner-a", SummaryText: "Water boils at 100 degrees Celsius."}
	store.summaries["s1"] = orig

	svc := NewArtifactService(store, &fakeGenerator{
		cards: []models.Flashcard{{Front: "f", Back: "b"}},
		mcqs:  []models.MCQ{{Question: "q", Options: []string{"a", "b"}, AnswerIndex: 0}},
	})

	_, err := svc.Flashcards(context.Background(), "owner-a", "s1", 3)
	require.NoError(t, err)
	_, err = svc.MCQs(context.Background(), "owner-a", "s1", 3)
	require.NoError(t, err)

	assert.Len(t, store.summaries, 1)
	assert.Equal(t, "Water boils at 100 degrees Celsius.", store.summaries["s1"].SummaryText)
}

func TestSummaryServiceGetScopedToOwner(t *testing.T) {
	store := newFakeStore()
	store.summaries["s1"] = &models.Summary{ID: "s1", OwnerID: "owner-a", SummaryText: "text"}

	svc := NewSummaryService(store, &fakeEmbedder{})

	got, err := svc.Get(context.Background(), "owner-a", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	_, err = svc.Get(context.Background(), "owner-b", "s1")
	assert.Equal(t, errs.NotFound, errs.KindOf(err))

	_, err = svc.Get(context.Background(), "", "s1")
	assert.Equal(t, errs.Unauthenticated, errs.KindOf(err))
}

func TestSearchValidatesAndClamps(t *testing.T) {
	store := newFakeStore()
	for _, id := range []string{"a", "b", "c"} {
		store.summaries[id] = &models.Summary{ID: id, OwnerID: "owner-a", SummaryText: "text"}
	}
	emb := &fakeEmbedder{}
	svc := NewSummaryService(store, emb)

	_, err := svc.Search(context.Background(), "owner-a", "   ", 10)
	assert.Equal(t, errs.EmptyInput, errs.KindOf(err))
	assert.Zero(t, emb.calls, "blank query must not reach the embedder")

	got, err := svc.Search(context.Background(), "owner-a", "thermodynamics", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.Search(context.Background(), "owner-a", "thermodynamics", 0)
	require.NoError(t, err)
	assert.Len(t, got, 3) // default limit is larger than the data set

	_, err = svc.Search(context.Background(), "owner-a", "x", 1000)
	require.NoError(t, err)
}

func TestSearchSurfacesEmbedderFailure(t *testing.T) {
	svc := NewSummaryService(newFakeStore(), &fakeEmbedder{err: errs.New(errs.UpstreamUnavailable, "down")})

	_, err := svc.Search(context.Background(), "owner-a", "query", 5)
	assert.Equal(t, errs.UpstreamUnavailable, errs.KindOf(err))
}
