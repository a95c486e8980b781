// Package embedding provides a client for interacting with embedding models.
package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"talent-match-go/internal/config"
	"talent-match-go/pkg/invoke"
	"talent-match-go/pkg/log"
)

// OperationEmbed 是向量化调用在限流客户端中的操作标签。
const OperationEmbed = "embedding"

// Client defines the interface for an embedding client.
type Client interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type openAICompatibleClient struct {
	cfg     config.EmbeddingConfig
	api     *openai.Client
	invoker *invoke.Client
}

// NewClient creates an OpenAI-compatible embedding client. Every call goes through invoker.
func NewClient(cfg config.EmbeddingConfig, invoker *invoke.Client) Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openAICompatibleClient{
		cfg:     cfg,
		api:     openai.NewClientWithConfig(clientCfg),
		invoker: invoker,
	}
}

// CreateEmbedding calls the embeddings API to get the vector for a given text.
func (c *openAICompatibleClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	log.Debugf("[EmbeddingClient] 开始调用 Embedding API, model: %s, input_len: %d", c.cfg.Model, len(text))

	vector, err := invoke.Invoke(ctx, c.invoker, OperationEmbed,
		c.buildRequest(text),
		func(ctx context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
			return c.api.CreateEmbeddings(ctx, req)
		},
		parseEmbeddingResponse,
	)
	if err != nil {
		return nil, err
	}

	log.Debugf("[EmbeddingClient] 成功获取向量, 维度: %d", len(vector))
	return vector, nil
}

func (c *openAICompatibleClient) buildRequest(text string) func() openai.EmbeddingRequest {
	return func() openai.EmbeddingRequest {
		req := openai.EmbeddingRequest{
			Input:          []string{text},
			Model:          openai.EmbeddingModel(c.cfg.Model),
			EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		}
		if c.cfg.Dimensions > 0 {
			req.Dimensions = c.cfg.Dimensions
		}
		return req
	}
}

func parseEmbeddingResponse(resp openai.EmbeddingResponse) ([]float32, error) {
	if len(resp.Data) == 0 {
		return nil, errors.New("response contains no embedding data")
	}
	vector := resp.Data[0].Embedding
	if len(vector) == 0 {
		return nil, fmt.Errorf("embedding at index %d is empty", resp.Data[0].Index)
	}
	return vector, nil
}
