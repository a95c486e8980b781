package model

import (
	"fmt"
	"time"
)

// Conversation 对应 'conversations' 表，是招聘方与候选人之间的会话。
// PairKey 由两位参与者的 ID 排序后拼接，唯一索引保证同一对用户只有一个会话。
type Conversation struct {
	ID           uint                      `gorm:"primaryKey" json:"id"`
	PairKey      string                    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants"`
	CreatedAt    time.Time                 `gorm:"autoCreateTime" json:"createdAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ConversationParticipant 对应 'conversation_participants' 表。
type ConversationParticipant struct {
	ID             uint `gorm:"primaryKey" json:"-"`
	ConversationID uint `gorm:"index;not null" json:"conversationId"`
	UserID         uint `gorm:"index;not null" json:"userId"`
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

// PairKey 返回与参数顺序无关的参与者键。
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
