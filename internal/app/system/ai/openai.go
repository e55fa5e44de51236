// internal/app/system/ai/openai.go
package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config for the OpenAI-backed client.
type Config struct {
	APIKey     string
	ChatModel  string // default: gpt-4o-mini
	EmbedModel string // default: text-embedding-3-small
}

// Client implements Embedder and Generator against the OpenAI API.
type Client struct {
	api        *openai.Client
	chatModel  string
	embedModel string
	log        *zap.Logger
}

var _ Embedder = (*Client)(nil)
var _ Generator = (*Client)(nil)

// ErrNoAPIKey is returned by calls when the client was built without a key.
var ErrNoAPIKey = errors.New("openai api key not configured")

// NewClient builds the OpenAI client. An empty API key is allowed so the app
// can start without assistant features; calls then fail with ErrNoAPIKey and
// the callers' best-effort paths take over.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = string(openai.SmallEmbedding3)
	}
	c := &Client{
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbedModel,
		log:        logger,
	}
	if cfg.APIKey != "" {
		c.api = openai.NewClient(cfg.APIKey)
	}
	return c
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c == nil || c.api == nil {
		return nil, ErrNoAPIKey
	}

	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		c.log.Warn("embedding request failed",
			zap.Error(err),
			zap.Duration("took", time.Since(start)))
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response contained no data")
	}
	return resp.Data[0].Embedding, nil
}

// Complete runs a single-turn chat completion.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c == nil || c.api == nil {
		return "", ErrNoAPIKey
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
		MaxTokens:   512,
	})
	if err != nil {
		c.log.Warn("chat completion failed",
			zap.Error(err),
			zap.Duration("took", time.Since(start)))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
