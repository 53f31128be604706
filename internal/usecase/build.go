package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"studyrag/internal/adapter/store"
	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// BuildUseCase builds a course knowledge base: load notes, chunk, embed,
// persist. A rebuild replaces the persisted index wholesale.
type BuildUseCase struct {
	loader   port.NotesLoader
	chunker  port.Chunker
	embedder port.Embedder
	logger   *slog.Logger
}

// NewBuildUseCase creates the build pipeline.
func NewBuildUseCase(loader port.NotesLoader, chunker port.Chunker, embedder port.Embedder, logger *slog.Logger) *BuildUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildUseCase{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		logger:   logger,
	}
}

// Build indexes every supported note under notesDir and persists the result
// at indexPrefix. progress, if non-nil, is called after each embedded file.
func (u *BuildUseCase) Build(ctx context.Context, notesDir, indexPrefix string, progress func(done, total int)) (*store.VectorStore, error) {
	docs, err := u.loader.Load(notesDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no supported notes found in %s", notesDir)
	}

	vs := store.New(u.embedder.Dimension())

	for i, doc := range docs {
		chunks, err := u.chunker.Chunk(doc.Path, doc.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk %s: %w", doc.Path, err)
		}
		if len(chunks) == 0 {
			continue
		}

		texts := make([]string, len(chunks))
		for j, c := range chunks {
			texts[j] = c.Text
		}

		vectors, err := u.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed %s: %w", doc.Path, err)
		}

		if err := vs.Add(chunks, vectors); err != nil {
			return nil, err
		}

		if progress != nil {
			progress(i+1, len(docs))
		}
	}

	if vs.Count() == 0 {
		return nil, fmt.Errorf("%w: notes produced no chunks", domain.ErrEmptyIndex)
	}

	if err := vs.Save(indexPrefix); err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}

	u.logger.Info("built knowledge base",
		"notes_dir", notesDir,
		"index_prefix", indexPrefix,
		"files", len(docs),
		"chunks", vs.Count())

	return vs, nil
}
