// Package llm provides a client for single-shot text completions.
package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"talent-match-go/internal/config"
	"talent-match-go/pkg/invoke"
	"talent-match-go/pkg/log"
)

// Message 表示一条角色消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams 控制生成行为
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Client defines the interface for an LLM client.
type Client interface {
	// Complete 发送一组 role-based 消息并返回完整的回复文本。operation 用于限流客户端的日志与指标。
	Complete(ctx context.Context, operation string, messages []Message, gen *GenerationParams) (string, error)
}

type openAICompatibleClient struct {
	cfg     config.LLMConfig
	api     *openai.Client
	invoker *invoke.Client
}

// NewClient creates an OpenAI-compatible chat client. Every call goes through invoker.
func NewClient(cfg config.LLMConfig, invoker *invoke.Client) Client {
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

func (c *openAICompatibleClient) Complete(ctx context.Context, operation string, messages []Message, gen *GenerationParams) (string, error) {
	log.Debugf("[LLMClient] 开始调用 Chat API, operation: %s, model: %s, messages: %d", operation, c.cfg.Model, len(messages))

	return invoke.Invoke(ctx, c.invoker, operation,
		func() openai.ChatCompletionRequest { return c.buildRequest(messages, gen) },
		func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return c.api.CreateChatCompletion(ctx, req)
		},
		parseChatResponse,
	)
}

func (c *openAICompatibleClient) buildRequest(messages []Message, gen *GenerationParams) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	// 传参优先，否则从全局配置注入（若非零值）
	if gen == nil {
		gen = c.defaultGeneration()
	}
	if gen.Temperature != nil {
		req.Temperature = float32(*gen.Temperature)
	}
	if gen.TopP != nil {
		req.TopP = float32(*gen.TopP)
	}
	if gen.MaxTokens != nil {
		req.MaxTokens = *gen.MaxTokens
	}
	return req
}

func (c *openAICompatibleClient) defaultGeneration() *GenerationParams {
	var gp GenerationParams
	if c.cfg.Generation.Temperature != 0 {
		t := c.cfg.Generation.Temperature
		gp.Temperature = &t
	}
	if c.cfg.Generation.TopP != 0 {
		p := c.cfg.Generation.TopP
		gp.TopP = &p
	}
	if c.cfg.Generation.MaxTokens != 0 {
		m := c.cfg.Generation.MaxTokens
		gp.MaxTokens = &m
	}
	return &gp
}

func parseChatResponse(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", errors.New("response contains no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("first choice has empty content")
	}
	return content, nil
}
