package service

import (
	"context"

	"talent-match-go/internal/model"
	"talent-match-go/internal/repository"
)

// ConversationService 查询右滑后建立的会话。
type ConversationService interface {
	ListConversations(ctx context.Context, userID uint) ([]model.Conversation, error)
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

func (s *conversationService) ListConversations(ctx context.Context, userID uint) ([]model.Conversation, error) {
	convs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	return convs, nil
}
