package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talent-match-go/internal/model"
)

// SwipeRepository 负责滑动记录的持久化，每个匹配至多一条。
type SwipeRepository interface {
	Upsert(ctx context.Context, swipe *model.Swipe) error
	// DirectionsByMatches 返回 matchID -> 方向，未滑动的匹配不在结果中。
	DirectionsByMatches(ctx context.Context, matchIDs []uint) (map[uint]string, error)
}

type swipeRepository struct {
	db *gorm.DB
}

func NewSwipeRepository(db *gorm.DB) SwipeRepository {
	return &swipeRepository{db: db}
}

func (r *swipeRepository) Upsert(ctx context.Context, swipe *model.Swipe) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "talent_match_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
	}).Create(swipe).Error
}

func (r *swipeRepository) DirectionsByMatches(ctx context.Context, matchIDs []uint) (map[uint]string, error) {
	result := make(map[uint]string, len(matchIDs))
	if len(matchIDs) == 0 {
		return result, nil
	}
	var swipes []model.Swipe
	if err := r.db.WithContext(ctx).Where("talent_match_id IN ?", matchIDs).Find(&swipes).Error; err != nil {
		return nil, err
	}
	for _, s := range swipes {
		result[s.TalentMatchID] = s.Direction
	}
	return result, nil
}
