package usecase

import (
	"strings"

	"studyrag/internal/domain"
)

// chunkDelimiter separates context chunks in the prompt. Stable so that
// chunk boundaries can be recovered when inspecting prompts.
const chunkDelimiter = "\n\n---\n\n"

// BuildPrompt assembles the grounded prompt: instruction header, retrieved
// notes joined by a stable delimiter, then the question. Pure and
// deterministic.
func BuildPrompt(chunks []domain.Chunk, question string) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var sb strings.Builder
	sb.WriteString("You are a helpful study assistant.\n\n")
	sb.WriteString("Use ONLY the following notes to answer the question.\n")
	sb.WriteString("If the answer is not found, say: \"The notes do not contain this information.\"\n\n")
	sb.WriteString("Notes:\n")
	sb.WriteString(strings.Join(texts, chunkDelimiter))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
