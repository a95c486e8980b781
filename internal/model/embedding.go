package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileEmbedding 对应 'profile_embeddings' 表，与 User 一对一。
// 每次同步都会覆盖向量、来源文本和更新时间，不保留历史版本。
type ProfileEmbedding struct {
	ID         uint                         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint                         `gorm:"uniqueIndex;not null" json:"userId"`
	Vector     datatypes.JSONSlice[float32] `gorm:"not null" json:"-"`
	SourceText string                       `gorm:"type:text;not null" json:"sourceText"`
	Model      string                       `gorm:"type:varchar(100)" json:"model"`
	UpdatedAt  time.Time                    `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ProfileEmbedding) TableName() string {
	return "profile_embeddings"
}

// CandidateVector 是参与排序的一条候选：画像及其当前向量。
type CandidateVector struct {
	Profile User
	Vector  []float32
}
