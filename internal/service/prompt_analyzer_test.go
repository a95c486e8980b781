package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"talent-match-go/internal/model"
)

func TestFallbackAnalysis(t *testing.T) {
	a := FallbackAnalysis("Need a senior Go dev, with Kafka and k8s.")
	assert.Equal(t, []string{"Need", "senior", "with", "Kafka"}, a.Keywords)
	assert.Empty(t, a.Skills)
	assert.Empty(t, a.Category)
	assert.Equal(t, "Need a senior Go dev, with Kafka and k8s.", a.Enhanced)
}

func TestPromptAnalyzer_ParsesModelOutput(t *testing.T) {
	llmClient := newFakeLLM()
	llmClient.replies[OperationPromptAnalysis] = "```json\n" + `{"keywords":["backend","golang"],"skills":"Go, Kafka","seniority":"senior","category":"Engineering","enhanced":"Senior backend engineer with Go"}` + "\n```"
	cache := newFakeAnalysisCache()
	analyzer := NewPromptAnalyzer(llmClient, cache)

	a := analyzer.Analyze(context.Background(), "senior golang backend")
	assert.Equal(t, []string{"backend", "golang"}, a.Keywords)
	assert.Equal(t, []string{"Go", "Kafka"}, a.Skills)
	assert.Equal(t, "senior", a.Seniority)
	assert.Equal(t, "Engineering", a.Category)
	assert.Equal(t, "Senior backend engineer with Go", a.Enhanced)
	assert.Equal(t, 1, cache.sets)

	// 第二次命中缓存，不再调用模型
	again := analyzer.Analyze(context.Background(), "senior golang backend")
	assert.Equal(t, a, again)
	assert.Equal(t, 1, llmClient.calls[OperationPromptAnalysis])
}

func TestPromptAnalyzer_TolerantOfSurroundingText(t *testing.T) {
	llmClient := newFakeLLM()
	llmClient.replies[OperationPromptAnalysis] = `Sure! Here it is: {"keywords":["design"],"skills":[],"enhanced":""} Hope that helps.`
	a := NewPromptAnalyzer(llmClient, nil).Analyze(context.Background(), "product designer")

	assert.Equal(t, []string{"design"}, a.Keywords)
	assert.Empty(t, a.Skills)
	assert.Equal(t, "product designer", a.Enhanced)
}

func TestPromptAnalyzer_FallsBackOnModelError(t *testing.T) {
	llmClient := newFakeLLM()
	llmClient.errs[OperationPromptAnalysis] = errors.New("unavailable")
	cache := newFakeAnalysisCache()

	a := NewPromptAnalyzer(llmClient, cache).Analyze(context.Background(), "data scientist python")
	assert.Equal(t, FallbackAnalysis("data scientist python"), a)
	assert.Zero(t, cache.sets)
}

func TestPromptAnalyzer_FallsBackOnGarbage(t *testing.T) {
	llmClient := newFakeLLM()
	llmClient.replies[OperationPromptAnalysis] = "I cannot help with that"

	a := NewPromptAnalyzer(llmClient, nil).Analyze(context.Background(), "marketing lead")
	assert.Equal(t, &model.PromptAnalysis{Keywords: []string{"marketing", "lead"}, Skills: []string{}, Enhanced: "marketing lead"}, a)
}
