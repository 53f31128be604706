package port

import "context"

// LLM represents a hosted language model for text generation.
type LLM interface {
	// Generate sends the prompt and returns the model's answer text.
	// Single attempt; transport and API failures surface as errors.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
