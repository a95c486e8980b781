package service

import (
	"context"
	"fmt"
	"strings"

	"talent-match-go/internal/model"
	"talent-match-go/internal/repository"
	"talent-match-go/pkg/log"
)

// SwipeService 处理招聘方对匹配结果的滑动操作。
type SwipeService interface {
	Swipe(ctx context.Context, user *model.User, matchID uint, direction string) (*model.SwipeResultDTO, error)
}

type swipeService struct {
	matchRepo        repository.MatchRepository
	swipeRepo        repository.SwipeRepository
	conversationRepo repository.ConversationRepository
}

// NewSwipeService 创建一个新的 SwipeService 实例。
func NewSwipeService(
	matchRepo repository.MatchRepository,
	swipeRepo repository.SwipeRepository,
	conversationRepo repository.ConversationRepository,
) SwipeService {
	return &swipeService{
		matchRepo:        matchRepo,
		swipeRepo:        swipeRepo,
		conversationRepo: conversationRepo,
	}
}

// Swipe 记录滑动方向，重复滑动覆盖之前的方向。
// 右滑时确保招聘方与候选人之间存在且仅存在一个会话。
func (s *swipeService) Swipe(ctx context.Context, user *model.User, matchID uint, direction string) (*model.SwipeResultDTO, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != model.SwipeLeft && direction != model.SwipeRight {
		return nil, fmt.Errorf("无效的滑动方向 %q: %w", direction, ErrPrecondition)
	}
	if !canSearch(user) {
		return nil, fmt.Errorf("角色 %s 不能滑动匹配: %w", user.Role, ErrForbidden)
	}

	match, err := s.matchRepo.FindMatchByID(ctx, matchID)
	if err != nil {
		return nil, notFoundOr(err, "加载匹配 %d 失败", matchID)
	}
	req, err := s.matchRepo.FindRequestByID(ctx, match.MatchRequestID)
	if err != nil {
		return nil, notFoundOr(err, "加载搜索请求 %d 失败", match.MatchRequestID)
	}
	if req.UserID != user.ID {
		return nil, fmt.Errorf("匹配 %d 不属于用户 %d: %w", matchID, user.ID, ErrForbidden)
	}

	if err := s.swipeRepo.Upsert(ctx, &model.Swipe{
		TalentMatchID: match.ID,
		UserID:        user.ID,
		Direction:     direction,
	}); err != nil {
		return nil, fmt.Errorf("保存滑动记录失败: %w", err)
	}
	log.Infof("[SwipeService] 用户 %d 对匹配 %d 滑动: %s", user.ID, match.ID, direction)

	result := &model.SwipeResultDTO{MatchID: match.ID, Direction: direction}
	if direction != model.SwipeRight {
		return result, nil
	}

	conv, created, err := s.conversationRepo.FindOrCreateBetween(ctx, user.ID, match.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("创建会话失败: %w", err)
	}
	if created {
		log.Infof("[SwipeService] 已为用户 %d 与候选人 %d 创建会话 %d", user.ID, match.CandidateID, conv.ID)
	}
	result.ConversationID = &conv.ID
	return result, nil
}
