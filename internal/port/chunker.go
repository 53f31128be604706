package port

import "studyrag/internal/domain"

// Chunker splits normalized text into retrieval units.
type Chunker interface {
	Chunk(sourceFile, text string) ([]domain.Chunk, error)
}
