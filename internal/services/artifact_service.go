package services

import (
	"context"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/models"
)

// ArtifactService derives flashcards and MCQs from a stored summary on
// demand. Artifacts are recomputed on every call and never persisted, so
// repeated requests leave the store untouched. Ownership is checked before
// any generation work happens: a summary that is missing, or owned by
// someone else, fails fast with NotFound.
type ArtifactService struct {
	db  core.DbClient
	gen core.ArtifactGenerator
}

func NewArtifactService(db core.DbClient, gen core.ArtifactGenerator) *ArtifactService {
	return &ArtifactService{db: db, gen: gen}
}

func (s *ArtifactService) Flashcards(ctx context.Context, ownerID, summaryID string, count int) ([]models.Flashcard, error) {
	summary, err := s.db.GetSummaryForOwner(ctx, summaryID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.gen.GenerateFlashcards(ctx, summary.SummaryText, count)
}

func (s *ArtifactService) MCQs(ctx context.Context, ownerID, summaryID string, count int) ([]models.MCQ, error) {
	summary, err := s.db.GetSummaryForOwner(ctx, summaryID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.gen.GenerateMCQs(ctx, summary.SummaryText, count)
}
