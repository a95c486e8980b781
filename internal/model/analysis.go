package model

// PromptAnalysis 是对搜索提示词的结构化解读。
type PromptAnalysis struct {
	Keywords  []string `json:"keywords"`
	Skills    []string `json:"skills"`
	Seniority string   `json:"seniority"`
	Category  string   `json:"category"`
	Enhanced  string   `json:"enhanced"`
}
