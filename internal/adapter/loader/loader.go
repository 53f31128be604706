package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// DirLoader loads every supported file under a notes directory, dispatching
// to a format loader by file extension. Unsupported files are skipped.
type DirLoader struct {
	walker *Walker
	byExt  map[string]port.FileLoader
}

// NewDirLoader creates a loader for .txt, .md and .pdf notes.
func NewDirLoader() *DirLoader {
	return NewDirLoaderWith(
		NewTextLoader(),
		NewMarkdownLoader(),
		NewPDFLoader(),
	)
}

// NewDirLoaderWith creates a loader dispatching to the given format loaders.
func NewDirLoaderWith(loaders ...port.FileLoader) *DirLoader {
	byExt := make(map[string]port.FileLoader)
	var includes []string
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			byExt[ext] = l
			includes = append(includes, "**/*"+ext)
		}
	}
	return &DirLoader{
		walker: NewWalker(includes, nil),
		byExt:  byExt,
	}
}

// Load reads all supported files under dir and returns their normalized
// text. Files are returned in sorted path order so builds are reproducible.
func (d *DirLoader) Load(dir string) ([]domain.Document, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("notes directory not found: %w", err)
	}

	files, err := d.walker.Walk(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes directory: %w", err)
	}
	sort.Strings(files)

	var docs []domain.Document
	for _, path := range files {
		ext := strings.ToLower(filepath.Ext(path))
		fl, ok := d.byExt[ext]
		if !ok {
			continue
		}

		text, err := fl.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		text = Normalize(text)
		if text == "" {
			continue
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, domain.Document{Path: rel, Text: text})
	}

	return docs, nil
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// Normalize collapses runs of blank lines and trims surrounding whitespace.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
