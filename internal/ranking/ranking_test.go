package ranking

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-match-go/internal/model"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2, 0.5, -0.7, 3}

	self, err := CosineSimilarity(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, self, 1e-9)

	ab, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	ba, err := CosineSimilarity(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	assert.GreaterOrEqual(t, ab, -1.0)
	assert.LessOrEqual(t, ab, 1.0)

	neg, err := CosineSimilarity([]float32{1, 2}, []float32{-1, -2})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, neg, 1e-9)

	orth, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.Zero(t, orth)
}

func TestCosineSimilarity_ZeroMagnitude(t *testing.T) {
	sim, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.Zero(t, sim)
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestScaleSimilarity(t *testing.T) {
	cases := []struct {
		raw  float64
		want float64
	}{
		{0.1, 0.1},
		{0.2, 0.2},
		{0.25, 0.275},
		{0.4, 0.44},
		{0.6, 0.66},
		{0.75, 0.825},
		{0.9, 0.95},
		{-0.5, -0.5},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, ScaleSimilarity(tc.raw), 1e-9, "raw=%v", tc.raw)
	}
}

func TestRichnessBoost(t *testing.T) {
	assert.InDelta(t, 1+0.95*0.95*0.8, RichnessBoost(0.95), 1e-9)
	assert.InDelta(t, 1+math.Pow(0.85, 1.8)*0.65, RichnessBoost(0.85), 1e-9)
	assert.InDelta(t, 1+math.Pow(0.7, 1.5)*0.45, RichnessBoost(0.7), 1e-9)
	assert.InDelta(t, 1+math.Pow(0.5, 1.3)*0.3, RichnessBoost(0.5), 1e-9)
	assert.InDelta(t, 1.018, RichnessBoost(0.1), 1e-9)
	assert.InDelta(t, 1+0.4*0.18, RichnessBoost(0.4), 1e-9)
}

func TestFinalScore_Examples(t *testing.T) {
	// 0.825 * 1.722 超过上限
	assert.Equal(t, MaxScore, FinalScore(0.75, 0.95))
	// 0.275 * 1.018
	assert.InDelta(t, 0.27995, FinalScore(0.25, 0.1), 1e-9)
}

func TestFinalScore_Bounds(t *testing.T) {
	for raw := -1.0; raw <= 1.0; raw += 0.05 {
		for rho := 0.0; rho <= 1.0; rho += 0.05 {
			s := FinalScore(raw, rho)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, MaxScore)
		}
	}
}

func TestRichness(t *testing.T) {
	empty := &model.User{Username: "a"}
	assert.InDelta(t, 0.10, Richness(empty), 1e-9)

	full := &model.User{
		DisplayName: "Ada",
		Headline:    strings.Repeat("h", 40),
		Description: strings.Repeat("d", 300),
		Experience:  strings.Repeat("e", 150),
		Category:    "Engineering",
		WebsiteURL:  "https://ada.dev",
		LinkedInURL: "https://linkedin.com/in/ada",
		GitHubURL:   "https://github.com/ada",
	}
	assert.InDelta(t, 1.0, Richness(full), 1e-9)

	half := &model.User{Headline: strings.Repeat("h", 10), Category: "  "}
	assert.InDelta(t, 0.175, Richness(half), 1e-9)
}

func TestRichness_CountsCharactersNotBytes(t *testing.T) {
	p := &model.User{Headline: "资深后端工程师"}
	assert.InDelta(t, (10+15*7.0/20)/100, Richness(p), 1e-9)
}

func TestRichness_Monotonic(t *testing.T) {
	p := &model.User{}
	prev := Richness(p)
	for i := 0; i < 120; i++ {
		p.Description += "x"
		cur := Richness(p)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	for _, set := range []func(){
		func() { p.WebsiteURL = "w" },
		func() { p.LinkedInURL = "l" },
		func() { p.GitHubURL = "g" },
		func() { p.Category = "c" },
	} {
		set()
		cur := Richness(p)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestRichness_BandBoundariesAreExact(t *testing.T) {
	links := func(p *model.User) *model.User {
		p.WebsiteURL, p.LinkedInURL, p.GitHubURL = "https://w.dev", "https://linkedin.com/in/w", "https://github.com/w"
		return p
	}

	// 名称 10 + 描述 25 + 分类 15 + 三个链接 10 = 60
	atSixty := links(&model.User{Description: strings.Repeat("d", 100), Category: "c"})
	rho := Richness(atSixty)
	assert.Equal(t, 0.6, rho)
	assert.Equal(t, 1+math.Pow(0.6, 1.3)*0.3, RichnessBoost(rho))

	// 名称 10 + 描述 25 + 三个链接 10 = 45
	assert.Equal(t, 0.45, Richness(links(&model.User{Description: strings.Repeat("d", 100)})))

	// 名称 10 + 标题 15 + 描述 25 + 经历 25 + 三个链接 10 = 85
	atEightyFive := links(&model.User{
		Headline:    strings.Repeat("h", 20),
		Description: strings.Repeat("d", 100),
		Experience:  strings.Repeat("e", 100),
	})
	rho = Richness(atEightyFive)
	assert.Equal(t, 0.85, rho)
	assert.Equal(t, 1+math.Pow(0.85, 1.8)*0.65, RichnessBoost(rho))

	// 名称 10 + 标题 15 + 描述 25 + 经历 25 + 分类 15 = 90
	atNinety := &model.User{
		Headline:    strings.Repeat("h", 20),
		Description: strings.Repeat("d", 100),
		Experience:  strings.Repeat("e", 100),
		Category:    "c",
	}
	rho = Richness(atNinety)
	assert.Equal(t, 0.9, rho)
	assert.Equal(t, 1+math.Pow(0.9, 1.8)*0.65, RichnessBoost(rho))

	// 名称 10 + 描述 25 + 分类 15 + 一个链接 = 50 + 10/3
	oneLink := &model.User{Description: strings.Repeat("d", 100), Category: "c", WebsiteURL: "w"}
	assert.InDelta(t, (50+10.0/3)/100, Richness(oneLink), 1e-12)
}

func TestSelect_ExplicitZeroThreshold(t *testing.T) {
	zero := 0.0
	scored := []Scored{
		{Profile: model.User{ID: 1}, Score: 0.1},
		{Profile: model.User{ID: 2}, Score: 0},
	}
	got := Select(scored, Options{Threshold: &zero})
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].Profile.ID)

	assert.Empty(t, Select(scored, Options{}))
}

func TestSelect_ThresholdIsExclusive(t *testing.T) {
	got := Select([]Scored{
		{Profile: model.User{ID: 1}, Score: 0.20},
		{Profile: model.User{ID: 2}, Score: 0.2001},
	}, Options{})
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].Profile.ID)
}

func TestSelect_StableOrderAndLimit(t *testing.T) {
	got := Select([]Scored{
		{Profile: model.User{ID: 1}, Score: 0.5},
		{Profile: model.User{ID: 2}, Score: 0.9},
		{Profile: model.User{ID: 3}, Score: 0.5},
		{Profile: model.User{ID: 4}, Score: 0.7},
		{Profile: model.User{ID: 5}, Score: 0.5},
	}, Options{Limit: 4})
	ids := make([]uint, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.Profile.ID)
	}
	assert.Equal(t, []uint{2, 4, 1, 3}, ids)
}

func TestRank_EmptyPool(t *testing.T) {
	got, err := Rank([]float32{1, 0}, nil, Options{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_AllBelowThreshold(t *testing.T) {
	got, err := Rank([]float32{1, 0}, []model.CandidateVector{
		{Profile: model.User{ID: 1}, Vector: []float32{0, 1}},
		{Profile: model.User{ID: 2}, Vector: []float32{-1, 0}},
	}, Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRank_DimensionMismatchIsFatal(t *testing.T) {
	got, err := Rank([]float32{1, 0}, []model.CandidateVector{
		{Profile: model.User{ID: 2}, Vector: []float32{1, 0.1}},
		{Profile: model.User{ID: 1}, Vector: []float32{1, 0, 0}},
	}, Options{})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Nil(t, got)
}

func TestRank_RicherProfileWinsAtEqualSimilarity(t *testing.T) {
	sparse := model.User{ID: 1, DisplayName: "Sparse"}
	rich := model.User{
		ID: 2, DisplayName: "Rich",
		Headline:    strings.Repeat("h", 20),
		Description: strings.Repeat("d", 100),
		Experience:  strings.Repeat("e", 100),
		Category:    "Design",
	}
	// 余弦相似度约 0.5，两者都不会触及上限
	v := []float32{0.5, 0.8660254}
	got, err := Rank([]float32{1, 0}, []model.CandidateVector{
		{Profile: sparse, Vector: v},
		{Profile: rich, Vector: v},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(2), got[0].Profile.ID)
	assert.Greater(t, got[0].Score, got[1].Score)
	assert.Less(t, got[0].Score, MaxScore)
}
