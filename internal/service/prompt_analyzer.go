package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"talent-match-go/internal/model"
	"talent-match-go/internal/repository"
	"talent-match-go/pkg/llm"
	"talent-match-go/pkg/log"
)

// OperationPromptAnalysis 是提示词解读调用的操作标签。
const OperationPromptAnalysis = "prompt_analysis"

const analysisSystemPrompt = `You analyze recruiter search requests for a talent-matching platform.
Return ONLY a JSON object with these fields:
{"keywords": [string], "skills": [string], "seniority": string, "category": string, "enhanced": string}
- keywords: the most important search terms from the request
- skills: concrete skills or technologies implied by the request
- seniority: one of "junior", "mid", "senior", "lead" or "" if unclear
- category: the professional category (e.g. "Engineering", "Design", "Marketing") or ""
- enhanced: a one-sentence restatement of the request optimized for semantic search
Do not wrap the JSON in markdown.`

// PromptAnalyzer 将搜索提示词解读为结构化信息。
type PromptAnalyzer interface {
	// Analyze 从不返回错误：模型不可用或输出无法解析时退回本地启发式结果。
	Analyze(ctx context.Context, prompt string) *model.PromptAnalysis
}

type promptAnalyzer struct {
	llmClient llm.Client
	cache     repository.AnalysisCache
}

// NewPromptAnalyzer 创建一个新的 PromptAnalyzer。cache 可以为 nil。
func NewPromptAnalyzer(llmClient llm.Client, cache repository.AnalysisCache) PromptAnalyzer {
	return &promptAnalyzer{llmClient: llmClient, cache: cache}
}

func (a *promptAnalyzer) Analyze(ctx context.Context, prompt string) *model.PromptAnalysis {
	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, prompt)
		if err != nil {
			log.Warnf("[PromptAnalyzer] 读取解读缓存失败: %v", err)
		} else if ok {
			log.Debugf("[PromptAnalyzer] 命中解读缓存")
			return cached
		}
	}

	raw, err := a.llmClient.Complete(ctx, OperationPromptAnalysis, []llm.Message{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: prompt},
	}, nil)
	if err != nil {
		log.Warnf("[PromptAnalyzer] 模型解读失败，使用本地启发式: %v", err)
		return FallbackAnalysis(prompt)
	}

	analysis, err := parseAnalysis(raw, prompt)
	if err != nil {
		log.Warnf("[PromptAnalyzer] 解读结果无法解析，使用本地启发式: %v", err)
		return FallbackAnalysis(prompt)
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, prompt, analysis); err != nil {
			log.Warnf("[PromptAnalyzer] 写入解读缓存失败: %v", err)
		}
	}
	return analysis
}

// FallbackAnalysis 是不依赖模型的解读：长度超过 3 个字符的词作为关键词，其它字段留空。
func FallbackAnalysis(prompt string) *model.PromptAnalysis {
	keywords := make([]string, 0)
	for _, w := range strings.Fields(prompt) {
		w = strings.TrimFunc(w, unicode.IsPunct)
		if utf8.RuneCountInString(w) > 3 {
			keywords = append(keywords, w)
		}
	}
	return &model.PromptAnalysis{
		Keywords: keywords,
		Skills:   []string{},
		Enhanced: prompt,
	}
}

func parseAnalysis(raw, prompt string) (*model.PromptAnalysis, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	analysis := &model.PromptAnalysis{
		Keywords:  coerceStrings(payload["keywords"]),
		Skills:    coerceStrings(payload["skills"]),
		Seniority: coerceString(payload["seniority"]),
		Category:  coerceString(payload["category"]),
		Enhanced:  coerceString(payload["enhanced"]),
	}
	if analysis.Enhanced == "" {
		analysis.Enhanced = prompt
	}
	return analysis, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	// 模型偶尔会在 JSON 前后附带说明文字
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

// coerceStrings 接受字符串数组，也接受逗号分隔的单个字符串。
func coerceStrings(v any) []string {
	out := make([]string, 0)
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
