// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to OpenAI-compatible endpoints. The embedding and
// completion clients are configured independently so they can point at
// different providers.
type OpenAIProvider struct {
	config          *Config
	embeddingClient *openai.Client
	llmClient       *openai.Client
}

func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	embeddingConfig := openai.DefaultConfig(config.EmbeddingKey)
	if config.EmbeddingBaseURL != "" {
		embeddingConfig.BaseURL = config.EmbeddingBaseURL
	}
	llmConfig := openai.DefaultConfig(config.LLMKey)
	if config.LLMBaseURL != "" {
		llmConfig.BaseURL = config.LLMBaseURL
	}

	return &OpenAIProvider{
		config:          config,
		embeddingClient: openai.NewClientWithConfig(embeddingConfig),
		llmClient:       openai.NewClientWithConfig(llmConfig),
	}, nil
}

func (p *OpenAIProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32
	err := p.retryWithTimeout(ctx, func(ctx context.Context) error {
		req := openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		}
		resp, err := p.embeddingClient.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return NewEmbeddingError("empty embedding response", nil)
		}
		embedding = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, NewEmbeddingError("failed to create embedding", err)
	}
	return embedding, nil
}

func (p *OpenAIProvider) GetCompletion(ctx context.Context, system, user string) (string, error) {
	var reply string
	err := p.retryWithTimeout(ctx, func(ctx context.Context) error {
		resp, err := p.llmClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.config.ChatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Temperature: p.config.Temperature,
			TopP:        p.config.TopP,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return NewCompletionError("empty completion response", nil)
		}
		reply = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", NewCompletionError("failed to create completion", err)
	}
	return reply, nil
}

// retryWithTimeout runs call under the configured per-attempt timeout,
// retrying with a linear backoff. The parent context cancels the whole loop.
func (p *OpenAIProvider) retryWithTimeout(parent context.Context, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(parent, p.config.Timeout)
		err := call(ctx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if parent.Err() != nil {
			return parent.Err()
		}
		if attempt < p.config.MaxRetries {
			select {
			case <-parent.Done():
				return parent.Err()
			case <-time.After(time.Duration(attempt) * p.config.RetryDelay):
			}
		}
	}
	return lastErr
}
