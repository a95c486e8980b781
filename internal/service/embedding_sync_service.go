package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talent-match-go/internal/metrics"
	"talent-match-go/internal/model"
	"talent-match-go/internal/repository"
	"talent-match-go/pkg/embedding"
	"talent-match-go/pkg/invoke"
	"talent-match-go/pkg/log"
)

// EmbeddingSyncService 保证每个 Talent 画像在排序前都有向量。
type EmbeddingSyncService interface {
	// EnsureEmbedding 为单个用户生成并覆盖向量。非 Talent 用户直接跳过，失败向上返回。
	EnsureEmbedding(ctx context.Context, userID uint) error
	// SyncAllMissing 为所有缺少向量的 Talent 逐个补齐，单个失败只记录日志，返回成功数量。
	SyncAllMissing(ctx context.Context) int
}

type embeddingSyncService struct {
	userRepo      repository.UserRepository
	embeddingRepo repository.EmbeddingRepository
	embedder      embedding.Client
	modelName     string
	pacing        time.Duration
	sleep         invoke.Sleeper
}

// NewEmbeddingSyncService 创建一个新的 EmbeddingSyncService 实例。
// pacing 是批量同步时相邻两次调用之间的间隔。
func NewEmbeddingSyncService(
	userRepo repository.UserRepository,
	embeddingRepo repository.EmbeddingRepository,
	embedder embedding.Client,
	modelName string,
	pacing time.Duration,
) EmbeddingSyncService {
	return &embeddingSyncService{
		userRepo:      userRepo,
		embeddingRepo: embeddingRepo,
		embedder:      embedder,
		modelName:     modelName,
		pacing:        pacing,
		sleep:         invoke.SleepContext,
	}
}

// ComposeProfileText 按固定顺序拼接画像文本，缺失字段跳过，字段之间用单个空格分隔。
func ComposeProfileText(p *model.User) string {
	fields := []string{
		p.Name(),
		p.Headline,
		p.Description,
		p.Experience,
		p.Category,
		p.WebsiteURL,
		p.LinkedInURL,
		p.GitHubURL,
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

func (s *embeddingSyncService) EnsureEmbedding(ctx context.Context, userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return notFoundOr(err, "加载用户 %d 失败", userID)
	}
	return s.ensure(ctx, user)
}

func (s *embeddingSyncService) ensure(ctx context.Context, user *model.User) error {
	if !user.IsTalent() {
		log.Debugf("[EmbeddingSync] 用户 %d 角色为 %s，跳过向量化", user.ID, user.Role)
		metrics.EmbeddingSyncTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	text := ComposeProfileText(user)
	vector, err := s.embedder.CreateEmbedding(ctx, text)
	if err != nil {
		metrics.EmbeddingSyncTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("为用户 %d 生成向量失败: %w", user.ID, err)
	}

	record := &model.ProfileEmbedding{
		UserID:     user.ID,
		Vector:     vector,
		SourceText: text,
		Model:      s.modelName,
		UpdatedAt:  time.Now(),
	}
	if err := s.embeddingRepo.Upsert(ctx, record); err != nil {
		metrics.EmbeddingSyncTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("保存用户 %d 的向量失败: %w", user.ID, err)
	}

	metrics.EmbeddingSyncTotal.WithLabelValues("success").Inc()
	log.Infof("[EmbeddingSync] 用户 %d 向量已更新, 维度: %d", user.ID, len(vector))
	return nil
}

func (s *embeddingSyncService) SyncAllMissing(ctx context.Context) int {
	users, err := s.userRepo.FindTalentsWithoutEmbedding()
	if err != nil {
		log.Errorf("[EmbeddingSync] 查询缺少向量的用户失败: %v", err)
		return 0
	}
	if len(users) == 0 {
		return 0
	}
	log.Infof("[EmbeddingSync] 发现 %d 个缺少向量的 Talent 画像，开始补齐", len(users))

	succeeded := 0
	for i := range users {
		if i > 0 {
			if err := s.sleep(ctx, s.pacing); err != nil {
				log.Warnf("[EmbeddingSync] 批量同步被取消, 已完成 %d/%d", succeeded, len(users))
				break
			}
		}
		if err := s.ensure(ctx, &users[i]); err != nil {
			log.Errorf("[EmbeddingSync] 用户 %d 同步失败，继续下一个: %v", users[i].ID, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		succeeded++
	}

	log.Infof("[EmbeddingSync] 批量同步结束, 成功 %d/%d", succeeded, len(users))
	return succeeded
}
