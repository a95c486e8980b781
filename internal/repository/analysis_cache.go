package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"talent-match-go/internal/model"
)

// AnalysisCache 缓存提示词解读结果，相同提示词在有效期内不重复调用模型。
type AnalysisCache interface {
	Get(ctx context.Context, prompt string) (*model.PromptAnalysis, bool, error)
	Set(ctx context.Context, prompt string, analysis *model.PromptAnalysis) error
}

type redisAnalysisCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewAnalysisCache 创建一个基于 Redis 的 AnalysisCache。
func NewAnalysisCache(redisClient *redis.Client, ttl time.Duration) AnalysisCache {
	return &redisAnalysisCache{redisClient: redisClient, ttl: ttl}
}

func analysisKey(prompt string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(prompt))))
	return "match:analysis:" + hex.EncodeToString(sum[:])
}

func (c *redisAnalysisCache) Get(ctx context.Context, prompt string) (*model.PromptAnalysis, bool, error) {
	data, err := c.redisClient.Get(ctx, analysisKey(prompt)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get prompt analysis: %w", err)
	}
	var analysis model.PromptAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal prompt analysis: %w", err)
	}
	return &analysis, true, nil
}

func (c *redisAnalysisCache) Set(ctx context.Context, prompt string, analysis *model.PromptAnalysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt analysis: %w", err)
	}
	return c.redisClient.Set(ctx, analysisKey(prompt), data, c.ttl).Err()
}
