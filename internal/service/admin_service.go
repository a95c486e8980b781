package service

import (
	"context"

	"talent-match-go/internal/model"
	"talent-match-go/internal/repository"
	"talent-match-go/pkg/log"
)

// UserListResponse 定义了用户列表 API 的响应结构。
type UserListResponse struct {
	Content       []UserDetailResponse `json:"content"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Size          int                  `json:"size"`
	Number        int                  `json:"number"`
}

// UserDetailResponse 定义了用户列表项的详细结构。
type UserDetailResponse struct {
	UserID       uint            `json:"userId"`
	Username     string          `json:"username"`
	Role         string          `json:"role"`
	DisplayName  string          `json:"displayName"`
	HasEmbedding bool            `json:"hasEmbedding"`
	CreatedAt    model.LocalTime `json:"createdAt"`
}

// AdminService 接口定义了所有管理员相关的业务操作。
type AdminService interface {
	ListUsers(ctx context.Context, page, size int) (*UserListResponse, error)
	// SyncEmbeddings 立即为所有缺少向量的 Talent 补齐向量，返回成功数量。
	SyncEmbeddings(ctx context.Context) int
}

type adminService struct {
	userRepo      repository.UserRepository
	embeddingRepo repository.EmbeddingRepository
	syncer        EmbeddingSyncService
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(userRepo repository.UserRepository, embeddingRepo repository.EmbeddingRepository, syncer EmbeddingSyncService) AdminService {
	return &adminService{userRepo: userRepo, embeddingRepo: embeddingRepo, syncer: syncer}
}

// ListUsers 分页列出用户。page 从 1 开始。
func (s *adminService) ListUsers(ctx context.Context, page, size int) (*UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	users, total, err := s.userRepo.FindWithPagination((page-1)*size, size)
	if err != nil {
		return nil, err
	}

	content := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		item := UserDetailResponse{
			UserID:      u.ID,
			Username:    u.Username,
			Role:        u.Role,
			DisplayName: u.DisplayName,
			CreatedAt:   model.LocalTime(u.CreatedAt),
		}
		if u.IsTalent() {
			_, err := s.embeddingRepo.FindByUserID(ctx, u.ID)
			item.HasEmbedding = err == nil
		}
		content = append(content, item)
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}
	return &UserListResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}, nil
}

func (s *adminService) SyncEmbeddings(ctx context.Context) int {
	log.Info("[AdminService] 管理员触发画像向量批量同步")
	return s.syncer.SyncAllMissing(ctx)
}
