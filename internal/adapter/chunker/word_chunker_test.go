package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"studyrag/internal/domain"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestWordChunkerOverlap(t *testing.T) {
	c, err := NewWordChunker(500, 50)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := c.Chunk("notes.txt", words(1100))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)
	if len(first) != 500 {
		t.Errorf("expected first chunk to have 500 words, got %d", len(first))
	}

	// The last 50 words of the first chunk are the first 50 of the second.
	for i := 0; i < 50; i++ {
		if first[450+i] != second[i] {
			t.Fatalf("overlap mismatch at %d: %s vs %s", i, first[450+i], second[i])
		}
	}
}

func TestWordChunkerCoversAllWords(t *testing.T) {
	c, err := NewWordChunker(10, 3)
	if err != nil {
		t.Fatal(err)
	}

	input := words(47)
	chunks, err := c.Chunk("notes.txt", input)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	for _, chunk := range chunks {
		for _, w := range strings.Fields(chunk.Text) {
			seen[w] = true
		}
	}
	for _, w := range strings.Fields(input) {
		if !seen[w] {
			t.Errorf("word %s not covered by any chunk", w)
		}
	}
}

func TestWordChunkerShortInput(t *testing.T) {
	c, err := NewWordChunker(500, 50)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := c.Chunk("notes.txt", "just a few words")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "just a few words" {
		t.Errorf("unexpected chunk text: %q", chunks[0].Text)
	}
	if chunks[0].Position != 0 {
		t.Errorf("expected position 0, got %d", chunks[0].Position)
	}
	if chunks[0].SourceFile != "notes.txt" {
		t.Errorf("unexpected source file: %s", chunks[0].SourceFile)
	}
}

func TestWordChunkerEmptyInput(t *testing.T) {
	c, err := NewWordChunker(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := c.Chunk("notes.txt", "   \n  ")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for blank input, got %d", len(chunks))
	}
}

func TestWordChunkerPositions(t *testing.T) {
	c, err := NewWordChunker(10, 0)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := c.Chunk("notes.txt", words(25))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Position != i {
			t.Errorf("chunk %d has position %d", i, chunk.Position)
		}
	}

	// Final window is shorter than the rest.
	last := strings.Fields(chunks[2].Text)
	if len(last) != 5 {
		t.Errorf("expected final chunk with 5 words, got %d", len(last))
	}
}

func TestWordChunkerInvalidParams(t *testing.T) {
	cases := []struct {
		name            string
		window, overlap int
	}{
		{"overlap equals window", 10, 10},
		{"overlap exceeds window", 10, 20},
		{"zero window", 0, 0},
		{"negative overlap", 10, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWordChunker(tc.window, tc.overlap)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
