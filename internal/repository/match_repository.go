package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"talent-match-go/internal/model"
)

// MatchRepository 负责搜索请求及其匹配结果的持久化。
type MatchRepository interface {
	CreateRequest(ctx context.Context, req *model.MatchRequest) error
	UpdateRequestStatus(ctx context.Context, requestID uint, status string) error
	SaveRequestAnalysis(ctx context.Context, requestID uint, analysis *model.PromptAnalysis) error
	FindRequestByID(ctx context.Context, requestID uint) (*model.MatchRequest, error)
	ListRequestsByUser(ctx context.Context, userID uint, offset, limit int) ([]model.MatchRequest, int64, error)
	CountMatchesByRequests(ctx context.Context, requestIDs []uint) (map[uint]int64, error)

	CreateMatch(ctx context.Context, match *model.TalentMatch) error
	FindMatchByID(ctx context.Context, matchID uint) (*model.TalentMatch, error)
	ListMatchesByRequest(ctx context.Context, requestID uint) ([]model.TalentMatch, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) CreateRequest(ctx context.Context, req *model.MatchRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *matchRepository) UpdateRequestStatus(ctx context.Context, requestID uint, status string) error {
	res := r.db.WithContext(ctx).Model(&model.MatchRequest{}).Where("id = ?", requestID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *matchRepository) SaveRequestAnalysis(ctx context.Context, requestID uint, analysis *model.PromptAnalysis) error {
	return r.db.WithContext(ctx).Model(&model.MatchRequest{}).Where("id = ?", requestID).Updates(map[string]interface{}{
		"keywords": datatypes.NewJSONSlice(analysis.Keywords),
		"skills":   datatypes.NewJSONSlice(analysis.Skills),
	}).Error
}

func (r *matchRepository) FindRequestByID(ctx context.Context, requestID uint) (*model.MatchRequest, error) {
	var req model.MatchRequest
	if err := r.db.WithContext(ctx).First(&req, requestID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *matchRepository) ListRequestsByUser(ctx context.Context, userID uint, offset, limit int) ([]model.MatchRequest, int64, error) {
	var reqs []model.MatchRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.MatchRequest{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *matchRepository) CountMatchesByRequests(ctx context.Context, requestIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(requestIDs))
	if len(requestIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		MatchRequestID uint
		Total          int64
	}
	err := r.db.WithContext(ctx).Model(&model.TalentMatch{}).
		Select("match_request_id, COUNT(*) AS total").
		Where("match_request_id IN ?", requestIDs).
		Group("match_request_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.MatchRequestID] = row.Total
	}
	return counts, nil
}

func (r *matchRepository) CreateMatch(ctx context.Context, match *model.TalentMatch) error {
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *matchRepository) FindMatchByID(ctx context.Context, matchID uint) (*model.TalentMatch, error) {
	var match model.TalentMatch
	if err := r.db.WithContext(ctx).First(&match, matchID).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// ListMatchesByRequest 按得分降序返回某次搜索的全部匹配。
func (r *matchRepository) ListMatchesByRequest(ctx context.Context, requestID uint) ([]model.TalentMatch, error) {
	var matches []model.TalentMatch
	err := r.db.WithContext(ctx).
		Where("match_request_id = ?", requestID).
		Order("score DESC, id").
		Find(&matches).Error
	return matches, err
}
