package usecase

import (
	"unicode/utf8"

	"studyrag/internal/domain"
)

// charsPerToken is a deliberate heuristic, not a tokenizer: one token is
// taken to be four characters. Accuracy is approximate by design.
const charsPerToken = 4

// EstimateTokens estimates the token count of text as ceil(len/4).
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// FitToBudget reduces retrieved chunks until the full prompt draft fits
// budget-reserved estimated tokens. Lowest-ranked chunks drop first (the
// tail of the list, since chunks arrive in retrieval order). If the single
// remaining chunk still overflows, its text is cut to the character count
// the remaining budget implies. The question is never dropped.
//
// The returned flag reports whether anything was dropped or cut; truncation
// is a logged adjustment, not an error.
func FitToBudget(chunks []domain.Chunk, question string, budget, reserved int) ([]domain.Chunk, bool) {
	available := budget - reserved

	kept := make([]domain.Chunk, len(chunks))
	copy(kept, chunks)

	truncated := false
	for len(kept) > 1 && EstimateTokens(BuildPrompt(kept, question)) > available {
		kept = kept[:len(kept)-1]
		truncated = true
	}

	if len(kept) == 1 && EstimateTokens(BuildPrompt(kept, question)) > available {
		draft := BuildPrompt(kept, question)
		overhead := len(draft) - len(kept[0].Text)

		allowed := available*charsPerToken - overhead
		if allowed < 0 {
			allowed = 0
		}
		if allowed < len(kept[0].Text) {
			// Back off to a rune boundary so the cut never emits
			// invalid UTF-8.
			for allowed > 0 && !utf8.RuneStart(kept[0].Text[allowed]) {
				allowed--
			}
			kept[0].Text = kept[0].Text[:allowed]
			truncated = true
		}
	}

	return kept, truncated
}
