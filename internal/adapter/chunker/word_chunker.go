package chunker

import (
	"fmt"
	"strings"

	"studyrag/internal/domain"
)

// WordChunker splits text into overlapping fixed-size word windows.
// Windows advance by window-overlap words; the final window may be shorter.
type WordChunker struct {
	window  int
	overlap int
}

// NewWordChunker creates a word-window chunker. overlap must be smaller than
// window, otherwise the window never advances.
func NewWordChunker(window, overlap int) (*WordChunker, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", domain.ErrInvalidInput, window)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", domain.ErrInvalidInput, overlap)
	}
	if overlap >= window {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than window (%d)", domain.ErrInvalidInput, overlap, window)
	}
	return &WordChunker{window: window, overlap: overlap}, nil
}

// Chunk splits text into chunks. Text with fewer words than one window
// produces exactly one chunk; empty text produces none.
func (c *WordChunker) Chunk(sourceFile, text string) ([]domain.Chunk, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	step := c.window - c.overlap
	var chunks []domain.Chunk

	for start, pos := 0, 0; start < len(words); start, pos = start+step, pos+1 {
		end := start + c.window
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, domain.Chunk{
			Text:       strings.Join(words[start:end], " "),
			SourceFile: sourceFile,
			Position:   pos,
		})

		if end == len(words) {
			break
		}
	}

	return chunks, nil
}
