package port

import "studyrag/internal/domain"

// FileLoader extracts normalized text from one file format.
type FileLoader interface {
	// Extensions returns the lower-case file extensions this loader
	// handles, including the leading dot.
	Extensions() []string

	// Load reads the file and returns its normalized text.
	Load(path string) (string, error)
}

// NotesLoader loads every supported file under a notes directory.
type NotesLoader interface {
	Load(dir string) ([]domain.Document, error)
}
