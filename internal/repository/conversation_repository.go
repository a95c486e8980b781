package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"talent-match-go/internal/model"
)

// ConversationRepository 负责招聘方与候选人会话的查找与创建。
type ConversationRepository interface {
	// FindOrCreateBetween 返回两位用户之间的会话，不存在时创建。created 表示本次是否新建。
	FindOrCreateBetween(ctx context.Context, userA, userB uint) (conv *model.Conversation, created bool, err error)
	ListByUser(ctx context.Context, userID uint) ([]model.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindOrCreateBetween(ctx context.Context, userA, userB uint) (*model.Conversation, bool, error) {
	key := model.PairKey(userA, userB)

	var conv model.Conversation
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Participants").Where("pair_key = ?", key).First(&conv).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		conv = model.Conversation{
			PairKey: key,
			Participants: []model.ConversationParticipant{
				{UserID: userA},
				{UserID: userB},
			},
		}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发右滑时另一事务已先创建，直接读取
		conv = model.Conversation{}
		if err := r.db.WithContext(ctx).Preload("Participants").Where("pair_key = ?", key).First(&conv).Error; err != nil {
			return nil, false, err
		}
		return &conv, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &conv, created, nil
}

// ListByUser 返回用户参与的全部会话，最新的在前。
func (r *conversationRepository) ListByUser(ctx context.Context, userID uint) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("conversations.created_at DESC, conversations.id DESC").
		Find(&convs).Error
	return convs, err
}
