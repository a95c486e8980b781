package ranking

import (
	"math"
	"strings"
	"unicode/utf8"

	"talent-match-go/internal/model"
)

// 百分制下各字段的分值。三个链接合计 linksWeight 分。
const (
	nameWeight        = 10.0
	headlineWeight    = 15.0
	headlineCap       = 20
	descriptionWeight = 25.0
	descriptionCap    = 100
	experienceWeight  = 25.0
	experienceCap     = 100
	categoryWeight    = 15.0
	linksWeight       = 10.0
)

// 累加时以 1/3 分为单位，链接分值因此为整数，各项之和精确，只在最后做一次除法。
const pointScale = 3

// Richness 计算画像的信息丰富度 ρ ∈ [0,1]。
// 文本长度按去除首尾空白后的字符数计算，超过上限的部分不再加分。
func Richness(p *model.User) float64 {
	score := nameWeight * pointScale
	score += lengthCredit(p.Headline, headlineCap, headlineWeight*pointScale)
	score += lengthCredit(p.Description, descriptionCap, descriptionWeight*pointScale)
	score += lengthCredit(p.Experience, experienceCap, experienceWeight*pointScale)
	if present(p.Category) {
		score += categoryWeight * pointScale
	}
	links := 0
	for _, link := range []string{p.WebsiteURL, p.LinkedInURL, p.GitHubURL} {
		if present(link) {
			links++
		}
	}
	score += float64(links) * linksWeight * pointScale / 3
	return clamp(score/(100*pointScale), 0, 1)
}

// RichnessBoost 返回丰富度对应的加权倍数，丰富度越高增幅越快。
func RichnessBoost(rho float64) float64 {
	switch {
	case rho > 0.9:
		return 1 + math.Pow(rho, 2.0)*0.8
	case rho > 0.8:
		return 1 + math.Pow(rho, 1.8)*0.65
	case rho > 0.6:
		return 1 + math.Pow(rho, 1.5)*0.45
	case rho > 0.4:
		return 1 + math.Pow(rho, 1.3)*0.3
	default:
		return 1 + rho*0.18
	}
}

func lengthCredit(s string, capLen int, weight float64) float64 {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	if n > capLen {
		n = capLen
	}
	return weight * float64(n) / float64(capLen)
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
