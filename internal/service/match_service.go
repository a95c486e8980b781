package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"talent-match-go/internal/config"
	"talent-match-go/internal/metrics"
	"talent-match-go/internal/model"
	"talent-match-go/internal/ranking"
	"talent-match-go/internal/repository"
	"talent-match-go/pkg/embedding"
	"talent-match-go/pkg/invoke"
	"talent-match-go/pkg/llm"
	"talent-match-go/pkg/log"
)

// OperationMatchExplanation 是生成匹配说明调用的操作标签。
const OperationMatchExplanation = "match_explanation"

// NoMatchesMessage 在没有候选人通过筛选时返回给调用方。
const NoMatchesMessage = "没有找到符合描述的人才，请尝试放宽条件或换一种描述方式。"

const explanationSystemPrompt = `You are a recruiting assistant. In 2-3 sentences, explain to the recruiter why the candidate matches their request.
Reference the candidate's name and the concrete parts of their headline, description, experience, skills and category that fit.
Be factual, do not invent information that is not in the profile, and do not use bullet points.`

// MatchService 驱动一次搜索从创建到完成，并提供历史查询。
type MatchService interface {
	StartSearch(ctx context.Context, user *model.User, prompt string) (*model.SearchResultDTO, error)
	GetMatches(ctx context.Context, user *model.User, requestID uint) (*model.MatchDetailDTO, error)
	ListHistory(ctx context.Context, user *model.User, page, size int) ([]model.HistoryItemDTO, int64, error)
}

type matchService struct {
	matchRepo     repository.MatchRepository
	embeddingRepo repository.EmbeddingRepository
	swipeRepo     repository.SwipeRepository
	userRepo      repository.UserRepository
	analyzer      PromptAnalyzer
	syncer        EmbeddingSyncService
	embedder      embedding.Client
	llmClient     llm.Client
	cfg           config.MatchingConfig
	sleep         invoke.Sleeper
}

// NewMatchService 创建一个新的 MatchService 实例。
func NewMatchService(
	matchRepo repository.MatchRepository,
	embeddingRepo repository.EmbeddingRepository,
	swipeRepo repository.SwipeRepository,
	userRepo repository.UserRepository,
	analyzer PromptAnalyzer,
	syncer EmbeddingSyncService,
	embedder embedding.Client,
	llmClient llm.Client,
	cfg config.MatchingConfig,
) MatchService {
	return &matchService{
		matchRepo:     matchRepo,
		embeddingRepo: embeddingRepo,
		swipeRepo:     swipeRepo,
		userRepo:      userRepo,
		analyzer:      analyzer,
		syncer:        syncer,
		embedder:      embedder,
		llmClient:     llmClient,
		cfg:           cfg,
		sleep:         invoke.SleepContext,
	}
}

// canSearch 判断用户是否可以发起搜索和滑动。
func canSearch(user *model.User) bool {
	return user.Role == model.RoleRecruiter || user.Role == model.RoleAdmin
}

// StartSearch 执行一次完整的搜索。
// 请求创建后的任何错误都会把请求标记为 failed，已保存的匹配保留，可通过 GetMatches 读取。
func (s *matchService) StartSearch(ctx context.Context, user *model.User, prompt string) (*model.SearchResultDTO, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("搜索描述不能为空: %w", ErrPrecondition)
	}
	if !canSearch(user) {
		return nil, fmt.Errorf("角色 %s 不能发起搜索: %w", user.Role, ErrForbidden)
	}

	// 步骤1: 创建搜索请求
	req := &model.MatchRequest{UserID: user.ID, Prompt: prompt, Status: model.MatchStatusProcessing}
	if err := s.matchRepo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("创建搜索请求失败: %w", err)
	}
	log.Infof("[MatchService] 步骤1: 搜索请求已创建, requestID: %d, user: %s", req.ID, user.Username)

	result, err := s.run(ctx, req)
	if err != nil {
		log.Errorf("[MatchService] 搜索请求 %d 失败: %v", req.ID, err)
		s.markFailed(ctx, req.ID)
		return nil, err
	}
	metrics.MatchRequestsTotal.WithLabelValues(model.MatchStatusCompleted).Inc()
	metrics.MatchResultsReturned.Observe(float64(len(result.Matches)))
	return result, nil
}

func (s *matchService) run(ctx context.Context, req *model.MatchRequest) (*model.SearchResultDTO, error) {
	// 步骤2: 解读提示词
	analysis := s.analyzer.Analyze(ctx, req.Prompt)
	log.Infof("[MatchService] 步骤2: 提示词解读完成, keywords: %v, skills: %v, category: %q", analysis.Keywords, analysis.Skills, analysis.Category)
	if err := s.matchRepo.SaveRequestAnalysis(ctx, req.ID, analysis); err != nil {
		log.Warnf("[MatchService] 保存解读结果失败, requestID: %d, error: %v", req.ID, err)
	}

	// 步骤3: 补齐缺失向量，向量化搜索文本并排序
	synced := s.syncer.SyncAllMissing(ctx)
	log.Infof("[MatchService] 步骤3: 已补齐 %d 个画像向量", synced)

	queryVector, err := s.embedder.CreateEmbedding(ctx, BuildSearchText(req.Prompt, analysis))
	if err != nil {
		return nil, fmt.Errorf("向量化搜索文本失败: %w", err)
	}
	candidates, err := s.embeddingRepo.ListTalentVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载候选人向量失败: %w", err)
	}
	minScore := s.cfg.MinScore
	ranked, err := ranking.Rank(queryVector, candidates, ranking.Options{
		Limit:     s.cfg.ResultLimit,
		Threshold: &minScore,
	})
	if err != nil {
		return nil, fmt.Errorf("排序失败: %w", err)
	}
	log.Infof("[MatchService] 步骤3: 候选池 %d 人, 入选 %d 人", len(candidates), len(ranked))

	result := &model.SearchResultDTO{RequestID: req.ID, Matches: make([]model.MatchDTO, 0, len(ranked))}

	// 步骤4: 无匹配也是正常完成
	if len(ranked) == 0 {
		if err := s.matchRepo.UpdateRequestStatus(ctx, req.ID, model.MatchStatusCompleted); err != nil {
			return nil, fmt.Errorf("更新请求状态失败: %w", err)
		}
		result.Status = model.MatchStatusCompleted
		result.Message = NoMatchesMessage
		log.Infof("[MatchService] 步骤4: 搜索请求 %d 无匹配结果", req.ID)
		return result, nil
	}

	// 步骤5: 逐个生成说明并保存
	for i, candidate := range ranked {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.ExplainPacing()); err != nil {
				return nil, err
			}
		}
		explanation, err := s.explain(ctx, req.Prompt, analysis, &candidate.Profile)
		if err != nil {
			return nil, fmt.Errorf("为候选人 %d 生成说明失败: %w", candidate.Profile.ID, err)
		}
		match := &model.TalentMatch{
			MatchRequestID: req.ID,
			CandidateID:    candidate.Profile.ID,
			Score:          candidate.Score,
			Explanation:    explanation,
		}
		if err := s.matchRepo.CreateMatch(ctx, match); err != nil {
			return nil, fmt.Errorf("保存候选人 %d 的匹配失败: %w", candidate.Profile.ID, err)
		}
		result.Matches = append(result.Matches, toMatchDTO(match, &candidate.Profile, ""))
	}

	// 步骤6: 完成
	if err := s.matchRepo.UpdateRequestStatus(ctx, req.ID, model.MatchStatusCompleted); err != nil {
		return nil, fmt.Errorf("更新请求状态失败: %w", err)
	}
	result.Status = model.MatchStatusCompleted
	log.Infof("[MatchService] 步骤6: 搜索请求 %d 完成, 共 %d 个匹配", req.ID, len(result.Matches))
	return result, nil
}

// markFailed 尽力把请求标记为 failed。调用方的 ctx 可能已取消，因此使用独立的超时。
func (s *matchService) markFailed(ctx context.Context, requestID uint) {
	metrics.MatchRequestsTotal.WithLabelValues(model.MatchStatusFailed).Inc()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.matchRepo.UpdateRequestStatus(ctx, requestID, model.MatchStatusFailed); err != nil {
		log.Errorf("[MatchService] 标记请求 %d 为 failed 失败: %v", requestID, err)
	}
}

func (s *matchService) explain(ctx context.Context, prompt string, analysis *model.PromptAnalysis, p *model.User) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Recruiter request: %s\n\n", prompt)
	b.WriteString("Candidate profile:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name())
	writeField(&b, "Headline", p.Headline)
	writeField(&b, "Description", p.Description)
	writeField(&b, "Experience", p.Experience)
	writeField(&b, "Category", p.Category)
	if len(analysis.Skills) > 0 {
		fmt.Fprintf(&b, "Skills sought: %s\n", strings.Join(analysis.Skills, ", "))
	}

	return s.llmClient.Complete(ctx, OperationMatchExplanation, []llm.Message{
		{Role: "system", Content: explanationSystemPrompt},
		{Role: "user", Content: b.String()},
	}, nil)
}

func writeField(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

// BuildSearchText 拼接原始提示词、改写结果、关键词和技能，作为查询向量的输入。
func BuildSearchText(prompt string, analysis *model.PromptAnalysis) string {
	parts := []string{prompt}
	if analysis != nil {
		if analysis.Enhanced != "" {
			parts = append(parts, analysis.Enhanced)
		}
		parts = append(parts, analysis.Keywords...)
		parts = append(parts, analysis.Skills...)
	}
	return strings.Join(parts, " ")
}

func (s *matchService) GetMatches(ctx context.Context, user *model.User, requestID uint) (*model.MatchDetailDTO, error) {
	req, err := s.ownedRequest(ctx, user, requestID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListMatchesByRequest(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("查询匹配结果失败: %w", err)
	}
	matchIDs := make([]uint, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}
	directions, err := s.swipeRepo.DirectionsByMatches(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("查询滑动记录失败: %w", err)
	}

	detail := &model.MatchDetailDTO{
		RequestID: req.ID,
		Prompt:    req.Prompt,
		Status:    req.Status,
		Keywords:  append([]string{}, req.Keywords...),
		Skills:    append([]string{}, req.Skills...),
		CreatedAt: model.LocalTime(req.CreatedAt),
		Matches:   make([]model.MatchDTO, 0, len(matches)),
	}
	for i := range matches {
		candidate, err := s.userRepo.FindByID(matches[i].CandidateID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 候选人账号已删除，保留匹配记录但不展示画像
				candidate = &model.User{ID: matches[i].CandidateID}
			} else {
				return nil, fmt.Errorf("加载候选人 %d 失败: %w", matches[i].CandidateID, err)
			}
		}
		detail.Matches = append(detail.Matches, toMatchDTO(&matches[i], candidate, directions[matches[i].ID]))
	}
	return detail, nil
}

func (s *matchService) ListHistory(ctx context.Context, user *model.User, page, size int) ([]model.HistoryItemDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	reqs, total, err := s.matchRepo.ListRequestsByUser(ctx, user.ID, (page-1)*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("查询搜索历史失败: %w", err)
	}
	ids := make([]uint, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	counts, err := s.matchRepo.CountMatchesByRequests(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("统计匹配数量失败: %w", err)
	}

	items := make([]model.HistoryItemDTO, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, model.HistoryItemDTO{
			RequestID:  r.ID,
			Prompt:     r.Prompt,
			Status:     r.Status,
			MatchCount: counts[r.ID],
			CreatedAt:  model.LocalTime(r.CreatedAt),
		})
	}
	return items, total, nil
}

// ownedRequest 加载搜索请求并校验归属，管理员可以读取任意请求。
func (s *matchService) ownedRequest(ctx context.Context, user *model.User, requestID uint) (*model.MatchRequest, error) {
	req, err := s.matchRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "加载搜索请求 %d 失败", requestID)
	}
	if req.UserID != user.ID && user.Role != model.RoleAdmin {
		return nil, fmt.Errorf("搜索请求 %d 不属于用户 %d: %w", requestID, user.ID, ErrForbidden)
	}
	return req, nil
}

func toMatchDTO(m *model.TalentMatch, candidate *model.User, direction string) model.MatchDTO {
	return model.MatchDTO{
		ID:          m.ID,
		CandidateID: m.CandidateID,
		Name:        candidate.Name(),
		Headline:    candidate.Headline,
		Category:    candidate.Category,
		Score:       m.Score,
		Explanation: m.Explanation,
		Swipe:       direction,
	}
}
