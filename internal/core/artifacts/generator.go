// Package artifacts derives transient study artifacts (flashcards,
// multiple-choice questions) from a stored summary's text. Generation is
// purely functional over its input: nothing is persisted, and every
// request recomputes from scratch.
package artifacts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/core/retry"
	"github.com/okechi-dev/summarly/internal/models"
)

type Config struct {
	DefaultCount int // artifacts per request when the caller passes 0
	MaxCount     int // hard cap on requested count
	MinViable    int // fewer survivors than this fails with GenerationIncomplete
	CallTimeout  time.Duration
	Retry        retry.Policy
}

func DefaultConfig() Config {
	return Config{
		DefaultCount: 10,
		MaxCount:     25,
		MinViable:    3,
		CallTimeout:  60 * time.Second,
		Retry:        retry.DefaultPolicy(),
	}
}

type Generator struct {
	llm core.LLMProvider
	cfg Config
}

var _ core.ArtifactGenerator = (*Generator)(nil)

func NewGenerator(llm core.LLMProvider, cfg Config) *Generator {
	if cfg.DefaultCount <= 0 {
		cfg = DefaultConfig()
	}
	return &Generator{llm: llm, cfg: cfg}
}

const generatorSystemPrompt = "You are a study assistant creating practice material strictly from the provided content. Never use outside knowledge and never invent facts."

// GenerateFlashcards derives count front/back cards from summaryText.
func (g *Generator) GenerateFlashcards(ctx context.Context, summaryText string, count int) ([]models.Flashcard, error) {
	summaryText = strings.TrimSpace(summaryText)
	if summaryText == "" {
		return nil, errs.New(errs.EmptyInput, "empty summary text")
	}
	count = g.clampCount(count)

	raw, err := g.call(ctx, flashcardPrompt(summaryText, count))
	if err != nil {
		return nil, err
	}

	cards := parseFlashcards(raw)
	if len(cards) < g.cfg.MinViable {
		return nil, errs.New(errs.GenerationIncomplete, "only %d of %d flashcards usable", len(cards), count)
	}
	if len(cards) > count {
		cards = cards[:count]
	}
	return cards, nil
}

// GenerateMCQs derives count multiple-choice questions from summaryText.
// Every returned MCQ holds the contract: exactly one correct answer index,
// pairwise-distinct options, and a correct answer grounded in the summary.
// Items the model got wrong are dropped rather than repaired.
func (g *Generator) GenerateMCQs(ctx context.Context, summaryText string, count int) ([]models.MCQ, error) {
	summaryText = strings.TrimSpace(summaryText)
	if summaryText == "" {
		return nil, errs.New(errs.EmptyInput, "empty summary text")
	}
	count = g.clampCount(count)

	raw, err := g.call(ctx, mcqPrompt(summaryText, count))
	if err != nil {
		return nil, err
	}

	var mcqs []models.MCQ
	for _, q := range parseMCQs(raw) {
		if validMCQ(q, summaryText) {
			mcqs = append(mcqs, q)
		}
	}
	if len(mcqs) < g.cfg.MinViable {
		return nil, errs.New(errs.GenerationIncomplete, "only %d of %d questions usable", len(mcqs), count)
	}
	if len(mcqs) > count {
		mcqs = mcqs[:count]
	}
	return mcqs, nil
}

func (g *Generator) clampCount(count int) int {
	if count <= 0 {
		return g.cfg.DefaultCount
	}
	if count > g.cfg.MaxCount {
		return g.cfg.MaxCount
	}
	return count
}

func (g *Generator) call(ctx context.Context, prompt string) (string, error) {
	var out string
	err := g.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		callCtx := ctx
		if g.cfg.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.cfg.CallTimeout)
			defer cancel()
		}

		resp, err := g.llm.Generate(callCtx, generatorSystemPrompt, prompt)
		if err != nil {
			return errs.Wrap(errs.UpstreamUnavailable, err)
		}
		if strings.TrimSpace(resp) == "" {
			return errs.New(errs.UpstreamUnavailable, "model returned no content")
		}
		out = resp
		return nil
	})
	return out, err
}

func flashcardPrompt(text string, count int) string {
	return fmt.Sprintf(`Create exactly %d study flashcards from the content below.
Format strictly, one pair per card:
Q: <question>
A: <answer>

Content:
%s`, count, text)
}

func mcqPrompt(text string, count int) string {
	return fmt.Sprintf(`Generate %d multiple choice questions from the following content.
Every correct answer must be taken word for word, or as a close paraphrase, from the content.

For each question include:
- 4 options (A-D), all different
- Correct answer at the end.

Format strictly:
Q1. <question>
A. <option>
B. <option>
C. <option>
D. <option>
Answer: <A/B/C/D>

Content:
%s`, count, text)
}
