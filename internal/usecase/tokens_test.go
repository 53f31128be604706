package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"studyrag/internal/domain"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 2},
		{"abc", 1},
		{strings.Repeat("x", 400), 100},
	}

	for _, tc := range cases {
		if got := EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestFitToBudgetNoChange(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "short chunk one"},
		{Text: "short chunk two"},
	}

	kept, truncated := FitToBudget(chunks, "question?", 10000, 500)
	if truncated {
		t.Error("expected no truncation for a roomy budget")
	}
	if len(kept) != 2 {
		t.Errorf("expected all chunks kept, got %d", len(kept))
	}
}

func TestFitToBudgetDropsLowestRankFirst(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: strings.Repeat("a", 400)},
		{Text: strings.Repeat("b", 400)},
		{Text: strings.Repeat("c", 400)},
	}

	// Budget fits roughly one chunk plus the prompt scaffolding.
	kept, truncated := FitToBudget(chunks, "question?", 700, 500)
	if !truncated {
		t.Error("expected truncation")
	}
	if len(kept) == 0 {
		t.Fatal("expected at least one chunk kept")
	}
	// Highest-ranked chunk survives; tail drops first.
	if !strings.HasPrefix(kept[0].Text, "a") {
		t.Errorf("expected the top-ranked chunk to survive, got %q", kept[0].Text[:1])
	}
	for _, c := range kept {
		if strings.HasPrefix(c.Text, "c") {
			t.Error("lowest-ranked chunk should have been dropped first")
		}
	}
}

func TestFitToBudgetTruncatesSingleChunk(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: strings.Repeat("a", 8000)},
	}

	budget, reserved := 600, 500
	kept, truncated := FitToBudget(chunks, "question?", budget, reserved)
	if !truncated {
		t.Error("expected truncation flag")
	}
	if len(kept) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(kept))
	}
	if len(kept[0].Text) >= 8000 {
		t.Error("expected the chunk text to be cut")
	}

	prompt := BuildPrompt(kept, "question?")
	if EstimateTokens(prompt) > budget-reserved {
		t.Errorf("prompt estimate %d exceeds available %d", EstimateTokens(prompt), budget-reserved)
	}
}

func TestFitToBudgetTruncationKeepsValidUTF8(t *testing.T) {
	// Multi-byte runes: a byte-count cut lands mid-rune unless the
	// truncation backs off to a boundary.
	chunks := []domain.Chunk{
		{Text: strings.Repeat("é", 4000)},
	}

	kept, truncated := FitToBudget(chunks, "question?", 600, 500)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !utf8.ValidString(kept[0].Text) {
		t.Error("truncated chunk text is not valid UTF-8")
	}
	if len(kept[0].Text) >= 8000 {
		t.Error("expected the chunk text to be cut")
	}
}

func TestFitToBudgetNeverDropsQuestion(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: strings.Repeat("a", 8000)},
		{Text: strings.Repeat("b", 8000)},
	}
	question := "What is the capital of France?"

	kept, _ := FitToBudget(chunks, question, 600, 500)
	prompt := BuildPrompt(kept, question)
	if !strings.Contains(prompt, question) {
		t.Error("question missing from the final prompt")
	}
}

func TestFitToBudgetWithinBudgetProperty(t *testing.T) {
	question := "How does a heap work?"
	for _, size := range []int{0, 100, 1000, 5000} {
		var chunks []domain.Chunk
		for i := 0; i < 4; i++ {
			chunks = append(chunks, domain.Chunk{Text: strings.Repeat("x", size)})
		}

		budget, reserved := 2000, 500
		kept, _ := FitToBudget(chunks, question, budget, reserved)
		got := EstimateTokens(BuildPrompt(kept, question))
		if got > budget-reserved {
			t.Errorf("size %d: estimate %d exceeds available %d", size, got, budget-reserved)
		}
	}
}
