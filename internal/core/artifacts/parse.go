package artifacts

import (
	"regexp"
	"strings"

	"github.com/okechi-dev/summarly/internal/models"
)

// parseFlashcards reads "Q: ... / A: ..." pairs out of a model reply.
// Markdown fences, numbering and stray prose between cards are tolerated;
// cards missing either side are dropped.
func parseFlashcards(raw string) []models.Flashcard {
	var (
		cards []models.Flashcard
		front string
	)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		switch {
		case hasTag(line, "Q:"):
			front = strings.TrimSpace(line[2:])
		case hasTag(line, "A:"):
			back := strings.TrimSpace(line[2:])
			if front != "" && back != "" {
				cards = append(cards, models.Flashcard{Front: front, Back: back})
			}
			front = ""
		}
	}
	return cards
}

var (
	questionPattern = regexp.MustCompile(`^Q\d+[.):]\s*(.+)$`)
	optionPattern   = regexp.MustCompile(`^([A-D])[.)]\s*(.+)$`)
	answerPattern   = regexp.MustCompile(`(?i)^Answer:\s*\(?([A-D])\)?`)
)

// parseMCQs reads numbered question blocks out of a model reply. A block is
// a "Qn." line, its lettered options and an "Answer:" line; blocks are
// collected permissively and validated afterwards.
func parseMCQs(raw string) []models.MCQ {
	var (
		mcqs []models.MCQ
		cur  *models.MCQ
	)
	flush := func() {
		if cur != nil {
			mcqs = append(mcqs, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if m := questionPattern.FindStringSubmatch(line); m != nil {
			flush()
			cur = &models.MCQ{Question: strings.TrimSpace(m[1]), AnswerIndex: -1}
			continue
		}
		if cur == nil {
			continue
		}
		if m := optionPattern.FindStringSubmatch(line); m != nil {
			// Letters must arrive in order; A restarts a malformed block's options.
			idx := int(m[1][0] - 'A')
			if idx == len(cur.Options) {
				cur.Options = append(cur.Options, strings.TrimSpace(m[2]))
			}
			continue
		}
		if m := answerPattern.FindStringSubmatch(line); m != nil {
			cur.AnswerIndex = int(m[1][0] - 'A')
			flush()
		}
	}
	flush()
	return mcqs
}

// validMCQ enforces the derivation contract: at least two pairwise-distinct
// options, exactly one in-range answer index, and a correct answer that is
// actually present in the summary rather than fabricated.
func validMCQ(q models.MCQ, summaryText string) bool {
	if q.Question == "" || len(q.Options) < 2 {
		return false
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
		return false
	}
	seen := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		key := strings.ToLower(strings.TrimSpace(opt))
		if key == "" || seen[key] {
			return false
		}
		seen[key] = true
	}
	return groundedIn(summaryText, q.Options[q.AnswerIndex])
}

// groundedIn reports whether answer is derived from the summary: either a
// literal substring, or sharing most of its significant words with it.
func groundedIn(summaryText, answer string) bool {
	summary := strings.ToLower(summaryText)
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return false
	}
	if strings.Contains(summary, answer) {
		return true
	}

	words := significantWords(answer)
	if len(words) == 0 {
		// Nothing substantive to check against, e.g. "42" or "yes"; fall
		// back to requiring the literal token.
		return strings.Contains(summary, answer)
	}
	hits := 0
	for _, w := range words {
		if strings.Contains(summary, w) {
			hits++
		}
	}
	return hits*2 >= len(words)
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(w) >= 4 {
			out = append(out, w)
		}
	}
	return out
}

func hasTag(line, tag string) bool {
	return len(line) >= len(tag) && strings.EqualFold(line[:len(tag)], tag)
}
