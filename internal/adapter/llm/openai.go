package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"studyrag/internal/domain"
)

// OpenAIClient generates answers through the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client reading the API key from the given
// environment variable.
func NewOpenAIClient(apiKeyEnv, model string) (*OpenAIClient, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Generate sends the prompt as a single user message. One attempt, no retry.
// An empty string return with nil error means the response carried no
// answer; the caller decides how to present that.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamModel, err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the model.
func (c *OpenAIClient) ModelName() string {
	return c.model
}
