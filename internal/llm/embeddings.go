package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// EmbeddingClient generates vector embeddings through the OpenAI embeddings
// API (or any compatible endpoint).
type EmbeddingClient struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbeddingClient creates an embedding client. An empty model defaults to
// text-embedding-3-small.
func NewEmbeddingClient(apiKey, model string) (*EmbeddingClient, error) {
	if apiKey == "" {
		return nil, errors.New("embedding API key is required")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	return &EmbeddingClient{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}, nil
}

// Model returns the embedding model identifier.
func (c *EmbeddingClient) Model() string {
	return string(c.model)
}

// Embed generates a vector embedding for the given text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response contained no data")
	}
	return resp.Data[0].Embedding, nil
}
