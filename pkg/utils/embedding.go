package utils

import (
	"context"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

type EmbeddingClientInterface interface {
	EmbedText(ctx context.Context, text string) (pgvector.Vector, error)
}

type OpenAIEmbeddingClient struct {
	client *openai.Client
}

func NewOpenAIEmbeddingClient(apiKey string) EmbeddingClientInterface {
	return &OpenAIEmbeddingClient{
		client: openai.NewClient(apiKey),
	}
}

func (c *OpenAIEmbeddingClient) EmbedText(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}
