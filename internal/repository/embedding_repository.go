package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talent-match-go/internal/model"
)

// EmbeddingRepository 负责画像向量的读写。
type EmbeddingRepository interface {
	// Upsert 按 user_id 插入或覆盖向量、来源文本和更新时间。
	Upsert(ctx context.Context, record *model.ProfileEmbedding) error
	FindByUserID(ctx context.Context, userID uint) (*model.ProfileEmbedding, error)
	// ListTalentVectors 返回全部 Talent 画像及其当前向量，供线性扫描排序。
	ListTalentVectors(ctx context.Context) ([]model.CandidateVector, error)
}

type embeddingRepository struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) EmbeddingRepository {
	return &embeddingRepository{db: db}
}

func (r *embeddingRepository) Upsert(ctx context.Context, record *model.ProfileEmbedding) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vector", "source_text", "model", "updated_at"}),
	}).Create(record).Error
}

func (r *embeddingRepository) FindByUserID(ctx context.Context, userID uint) (*model.ProfileEmbedding, error) {
	var record model.ProfileEmbedding
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *embeddingRepository) ListTalentVectors(ctx context.Context) ([]model.CandidateVector, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN profile_embeddings ON profile_embeddings.user_id = users.id").
		Where("users.role = ?", model.RoleTalent).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []model.CandidateVector{}, nil
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	var records []model.ProfileEmbedding
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	vectors := make(map[uint][]float32, len(records))
	for _, rec := range records {
		vectors[rec.UserID] = []float32(rec.Vector)
	}

	result := make([]model.CandidateVector, 0, len(users))
	for _, u := range users {
		if v, ok := vectors[u.ID]; ok {
			result = append(result, model.CandidateVector{Profile: u, Vector: v})
		}
	}
	return result, nil
}
