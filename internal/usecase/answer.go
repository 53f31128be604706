package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"studyrag/internal/adapter/registry"
	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// noAnswerPlaceholder is returned when the model response carries no answer.
const noAnswerPlaceholder = "No answer returned."

// AnswerUseCase runs one question through the retrieval pipeline:
// embed question, search the course index, fit the token budget, build the
// prompt, call the model. Each request runs to completion; there is no
// retry at any step.
type AnswerUseCase struct {
	embedder port.Embedder
	llm      port.LLM
	registry *registry.Registry

	topK           int
	tokenLimit     int
	reservedTokens int

	logger *slog.Logger
}

// NewAnswerUseCase creates the pipeline.
func NewAnswerUseCase(
	embedder port.Embedder,
	llm port.LLM,
	reg *registry.Registry,
	topK, tokenLimit, reservedTokens int,
	logger *slog.Logger,
) *AnswerUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerUseCase{
		embedder:       embedder,
		llm:            llm,
		registry:       reg,
		topK:           topK,
		tokenLimit:     tokenLimit,
		reservedTokens: reservedTokens,
		logger:         logger,
	}
}

// Answer answers a question from the course's indexed notes. The answer
// text is returned verbatim from the model.
func (u *AnswerUseCase) Answer(ctx context.Context, courseCode, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(courseCode) == "" {
		return "", fmt.Errorf("%w: course code is empty", domain.ErrInvalidInput)
	}

	vectors, err := u.embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	vs, err := u.registry.Store(courseCode)
	if err != nil {
		return "", err
	}

	results, err := vs.Search(vectors[0], u.topK)
	if err != nil {
		return "", err
	}

	chunks := make([]domain.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}

	kept, truncated := FitToBudget(chunks, question, u.tokenLimit, u.reservedTokens)
	if truncated {
		u.logger.Warn("context truncated to fit token budget",
			"course", courseCode,
			"retrieved", len(chunks),
			"kept", len(kept),
			"budget", u.tokenLimit,
			"reserved", u.reservedTokens)
	}

	prompt := BuildPrompt(kept, question)

	answer, err := u.llm.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamModel) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamModel, err)
	}
	if answer == "" {
		return noAnswerPlaceholder, nil
	}
	return answer, nil
}
