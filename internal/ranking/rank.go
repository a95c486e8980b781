package ranking

import (
	"fmt"
	"sort"

	"talent-match-go/internal/model"
)

const (
	// MaxScore 是最终得分的上限。
	MaxScore = 0.95
	// DefaultThreshold 以下（含）的候选人直接剔除。
	DefaultThreshold = 0.20
	// DefaultLimit 是单次搜索返回的最大人数。
	DefaultLimit = 20
)

// Scored 是一位入选候选人及其最终得分。
type Scored struct {
	Profile model.User
	Score   float64
}

// Options 控制筛选阈值与返回数量。Limit <= 0 时使用 DefaultLimit；
// Threshold 为 nil 时使用 DefaultThreshold，显式设置的 0 按 0 生效。
type Options struct {
	Limit     int
	Threshold *float64
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

func (o Options) threshold() float64 {
	if o.Threshold == nil {
		return DefaultThreshold
	}
	return *o.Threshold
}

// FinalScore 组合原始相似度与丰富度，结果位于 [0, MaxScore]。
func FinalScore(rawSimilarity, richness float64) float64 {
	return clamp(ScaleSimilarity(rawSimilarity)*RichnessBoost(richness), 0, MaxScore)
}

// Score 计算单个候选人相对查询向量的最终得分。
func Score(query []float32, c model.CandidateVector) (float64, error) {
	raw, err := CosineSimilarity(query, c.Vector)
	if err != nil {
		return 0, err
	}
	return FinalScore(raw, Richness(&c.Profile)), nil
}

// Rank 为所有候选人打分、过滤并按得分降序返回前 Limit 个。
// 任一候选向量与查询维度不一致即返回 ErrDimensionMismatch，这通常意味着模型切换后旧向量尚未重建。
// 候选池为空或全部低于阈值时返回空切片，不视为错误。
func Rank(query []float32, candidates []model.CandidateVector, opts Options) ([]Scored, error) {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		s, err := Score(query, c)
		if err != nil {
			return nil, fmt.Errorf("候选人 %d (维度 %d, 查询维度 %d): %w", c.Profile.ID, len(c.Vector), len(query), err)
		}
		scored = append(scored, Scored{Profile: c.Profile, Score: s})
	}
	return Select(scored, opts), nil
}

// Select 剔除得分不高于阈值的条目，按得分稳定降序排序后截取前 Limit 个。
func Select(scored []Scored, opts Options) []Scored {
	threshold, limit := opts.threshold(), opts.limit()
	kept := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if s.Score > threshold {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
