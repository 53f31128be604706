package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	batchSize int
}

// NewOpenAIEmbedder creates an embedder reading the API key from the given
// environment variable.
func NewOpenAIEmbedder(apiKeyEnv, model string, dimension, batchSize int) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	return &OpenAIEmbedder{
		client:    openai.NewClient(apiKey),
		model:     model,
		dimension: dimension,
		batchSize: batchSize,
	}, nil
}

// Embed generates one vector per input text, batching API calls.
// Failures surface as errors; there is no retry.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}

	return all, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < len(vectors) {
			vectors[item.Index] = item.Embedding
		}
	}
	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// MockEmbedder produces deterministic vectors without network access.
// Useful for tests and offline builds.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = make([]float32, e.dimension)
		for j, r := range text {
			if j >= e.dimension {
				break
			}
			vectors[i][j] = float32(r) / 1000.0
		}
	}
	return vectors, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
