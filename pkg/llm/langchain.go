package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainClient adapts any langchaingo model.
type LangChainClient struct {
	model   llms.Model
	options []llms.CallOption
}

func NewLangChainClient(model llms.Model, options ...llms.CallOption) *LangChainClient {
	return &LangChainClient{model: model, options: options}
}

// NewOpenAIClient targets the OpenAI API or any server speaking its protocol
// when baseURL is set.
func NewOpenAIClient(apiKey, model, baseURL string, temperature float64) (*LangChainClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	var callOpts []llms.CallOption
	if temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(temperature))
	}
	return NewLangChainClient(m, callOpts...), nil
}

func (c *LangChainClient) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, c.options...)
	if err != nil {
		return "", fmt.Errorf("llm generation failed: %w", err)
	}
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
