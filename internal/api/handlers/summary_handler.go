package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	middleware "github.com/okechi-dev/summarly/internal/api/middlewares"
	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/models"
)

// Ingestor is the slice of the ingest service the handler needs.
type Ingestor interface {
	Ingest(ctx context.Context, ownerID string, src core.Source) (*models.Summary, error)
}

// SummaryReader covers listing, retrieval and search.
type SummaryReader interface {
	List(ctx context.Context, ownerID string) ([]models.SummaryListing, error)
	Get(ctx context.Context, ownerID, summaryID string) (*models.Summary, error)
	Search(ctx context.Context, ownerID, query string, limit int) ([]models.SummaryListing, error)
}

// ArtifactDeriver derives transient study artifacts from a stored summary.
type ArtifactDeriver interface {
	Flashcards(ctx context.Context, ownerID, summaryID string, count int) ([]models.Flashcard, error)
	MCQs(ctx context.Context, ownerID, summaryID string, count int) ([]models.MCQ, error)
}

type SummaryHandler struct {
	ingestor  Ingestor
	summaries SummaryReader
	artifacts ArtifactDeriver

	maxUploadBytes int64
}

func NewSummaryHandler(ing Ingestor, reader SummaryReader, deriver ArtifactDeriver, maxUploadBytes int64) *SummaryHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &SummaryHandler{ingestor: ing, summaries: reader, artifacts: deriver, maxUploadBytes: maxUploadBytes}
}

// SummarizePDF accepts a multipart upload under the "file" field and runs
// the full ingestion pipeline synchronously.
func (h *SummaryHandler) SummarizePDF(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, errs.New(errs.ContentTooLarge, "upload exceeds %d bytes", h.maxUploadBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errs.New(errs.InvalidFormat, "missing file field"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errs.New(errs.InvalidFormat, "could not read upload"))
		return
	}

	summary, err := h.ingestor.Ingest(r.Context(), ownerID, core.Source{
		Kind:     models.SourcePDF,
		Bytes:    raw,
		FileName: header.Filename,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

type youtubeRequest struct {
	URL string `json:"url"`
}

func (h *SummaryHandler) SummarizeYouTube(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())

	var req youtubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.New(errs.InvalidFormat, "invalid body"))
		return
	}

	summary, err := h.ingestor.Ingest(r.Context(), ownerID, core.Source{
		Kind: models.SourceYouTube,
		URL:  req.URL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (h *SummaryHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	listings, err := h.summaries.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if listings == nil {
		listings = []models.SummaryListing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaries.Get(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *SummaryHandler) GetFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.artifacts.Flashcards(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), countParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flashcards": cards})
}

func (h *SummaryHandler) GetMCQs(w http.ResponseWriter, r *http.Request) {
	questions, err := h.artifacts.MCQs(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), countParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mcqs": questions})
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (h *SummaryHandler) SearchSummaries(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.New(errs.InvalidFormat, "invalid body"))
		return
	}

	listings, err := h.summaries.Search(r.Context(), middleware.UserID(r.Context()), req.Query, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if listings == nil {
		listings = []models.SummaryListing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

// countParam reads ?count=N; 0 lets the generator apply its default.
func countParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
