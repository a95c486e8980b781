package model

import (
	"time"

	"gorm.io/datatypes"
)

// MatchRequest 的状态。
const (
	MatchStatusProcessing = "processing"
	MatchStatusCompleted  = "completed"
	MatchStatusFailed     = "failed"
)

// 滑动方向。
const (
	SwipeLeft  = "left"
	SwipeRight = "right"
)

// MatchRequest 对应 'match_requests' 表，记录一次搜索及其生命周期。
type MatchRequest struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint   `gorm:"index;not null" json:"userId"`
	Prompt string `gorm:"type:text;not null" json:"prompt"`
	Status string `gorm:"type:varchar(20);not null;default:'processing'" json:"status"`

	// 提示词解读结果，解读完成后写入
	Keywords datatypes.JSONSlice[string] `json:"keywords"`
	Skills   datatypes.JSONSlice[string] `json:"skills"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (MatchRequest) TableName() string {
	return "match_requests"
}

// TalentMatch 对应 'talent_matches' 表：一次搜索选中的一位候选人，创建后不可修改。
type TalentMatch struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchRequestID uint      `gorm:"index;not null" json:"matchRequestId"`
	CandidateID    uint      `gorm:"index;not null" json:"candidateId"`
	Score          float64   `gorm:"not null" json:"score"`
	Explanation    string    `gorm:"type:text" json:"explanation"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (TalentMatch) TableName() string {
	return "talent_matches"
}

// Swipe 对应 'swipes' 表，每个 TalentMatch 至多一条，重复滑动覆盖方向。
type Swipe struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TalentMatchID uint      `gorm:"uniqueIndex;not null" json:"talentMatchId"`
	UserID        uint      `gorm:"index;not null" json:"userId"`
	Direction     string    `gorm:"type:varchar(10);not null" json:"direction"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Swipe) TableName() string {
	return "swipes"
}
