// Package summarize produces a bounded-length summary from normalized text.
// Text that exceeds the model's input budget is summarized map-reduce
// style: chunks are summarized independently, then a final pass runs over
// the concatenated chunk summaries.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/core/retry"
)

// Config tunes the engine.
//
// ChunkTokens:   approximate tokens per map-phase chunk.
// MaxInputBytes: absolute ingestible cap; larger inputs fail with ContentTooLarge.
// MinWords/MaxWords: target length range fed into the reduce prompt.
type Config struct {
	ChunkTokens   int
	MaxInputBytes int
	MinWords      int
	MaxWords      int
	CallTimeout   time.Duration
	Retry         retry.Policy
}

func DefaultConfig() Config {
	return Config{
		ChunkTokens:   3000,
		MaxInputBytes: 4 << 20,
		MinWords:      150,
		MaxWords:      500,
		CallTimeout:   60 * time.Second,
		Retry:         retry.DefaultPolicy(),
	}
}

// mapConcurrency bounds parallel chunk summarization so one large document
// cannot monopolize the model backend.
const mapConcurrency = 4

type Engine struct {
	llm core.LLMProvider
	cfg Config
}

var _ core.SummaryEngine = (*Engine)(nil)

func NewEngine(llm core.LLMProvider, cfg Config) *Engine {
	if cfg.ChunkTokens <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{llm: llm, cfg: cfg}
}

const systemPrompt = "You are a study assistant that writes faithful, well-structured summaries of educational material. Never invent facts that are not in the source text."

// Summarize returns a non-empty summary of text or a kinded error.
func (e *Engine) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errs.New(errs.EmptyInput, "nothing to summarize")
	}
	if len(text) > e.cfg.MaxInputBytes {
		return "", errs.New(errs.ContentTooLarge, "input is %d bytes, cap is %d", len(text), e.cfg.MaxInputBytes)
	}

	chunks := chunkText(text, e.cfg.ChunkTokens)
	if len(chunks) == 1 {
		return e.finalPass(ctx, chunks[0])
	}

	// Map phase: each chunk gets its own condensed summary.
	partials := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mapConcurrency)
	for idx, chunk := range chunks {
		g.Go(func() error {
			out, err := e.call(gctx, chunkPrompt(chunk))
			if err != nil {
				return errs.Stage(fmt.Sprintf("chunk %d/%d", idx+1, len(chunks)), err)
			}
			partials[idx] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	// Reduce phase: one summary over the concatenated chunk summaries.
	return e.finalPass(ctx, strings.Join(partials, "\n\n"))
}

func (e *Engine) finalPass(ctx context.Context, text string) (string, error) {
	out, err := e.call(ctx, finalPrompt(text, e.cfg.MinWords, e.cfg.MaxWords))
	if err != nil {
		return "", err
	}
	return out, nil
}

// call runs one model request under the per-call timeout and the bounded
// retry policy. Backend failures and empty responses both surface as
// UpstreamUnavailable.
func (e *Engine) call(ctx context.Context, prompt string) (string, error) {
	var out string
	err := e.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		callCtx := ctx
		if e.cfg.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.cfg.CallTimeout)
			defer cancel()
		}

		resp, err := e.llm.Generate(callCtx, systemPrompt, prompt)
		if err != nil {
			return errs.Wrap(errs.UpstreamUnavailable, err)
		}
		resp = strings.TrimSpace(resp)
		if resp == "" {
			return errs.New(errs.UpstreamUnavailable, "model returned an empty summary")
		}
		out = resp
		return nil
	})
	return out, err
}

func chunkPrompt(chunk string) string {
	return "Condense the following section of a longer document. Keep every key fact, definition and formula; drop filler.\n\nSection:\n" + chunk
}

func finalPrompt(text string, minWords, maxWords int) string {
	return fmt.Sprintf(`Summarize this educational content for a college student in %d-%d words.

Output format:
- Section-wise summary
- Key points
- Definitions or formulas
- Important takeaways

Content:
%s`, minWords, maxWords, text)
}

// chunkText splits text into token-bounded chunks on line boundaries. A
// single line larger than the budget becomes its own chunk rather than
// being split mid-sentence.
func chunkText(text string, targetTokens int) []string {
	if approxTokens(text) <= targetTokens {
		return []string{text}
	}

	var (
		chunks []string
		buf    []string
		tokSum int
	)
	flush := func() {
		if tokSum == 0 {
			return
		}
		chunks = append(chunks, strings.Join(buf, "\n"))
		buf = buf[:0]
		tokSum = 0
	}

	for _, line := range strings.Split(text, "\n") {
		t := approxTokens(line)
		if tokSum > 0 && tokSum+t > targetTokens {
			flush()
		}
		buf = append(buf, line)
		tokSum += t
	}
	flush()
	return chunks
}

// approxTokens is a cheap token estimator (~4 chars ≈ 1 token).
func approxTokens(s string) int {
	n := len([]rune(s))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}
