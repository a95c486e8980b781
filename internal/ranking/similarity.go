// Package ranking 实现纯计算的人才排序：余弦相似度、分段放大、信息丰富度加权与筛选。
// 包内不做任何 I/O，所有系数都是产品策略，修改前需与产品确认。
package ranking

import (
	"errors"
	"math"
)

// ErrDimensionMismatch 表示两个向量长度不一致。
var ErrDimensionMismatch = errors.New("向量维度不一致")

// CosineSimilarity 计算两个向量的余弦相似度，范围 [-1, 1]。
// 任一向量模长为 0 时返回 0。
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// 浮点误差可能让结果略微越界
	return math.Max(-1, math.Min(1, sim)), nil
}

// ScaleSimilarity 对原始相似度做分段放大。
// 中间三段目前系数相同，但保持分段以便独立调参。
func ScaleSimilarity(r float64) float64 {
	switch {
	case r > 0.7:
		return math.Min(MaxScore, r*1.1)
	case r > 0.5:
		return r * 1.1
	case r > 0.3:
		return r * 1.1
	case r > 0.2:
		return r * 1.1
	default:
		return r
	}
}
