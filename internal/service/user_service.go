// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"talent-match-go/internal/model"
	"talent-match-go/internal/repository"
	"talent-match-go/pkg/hash"
	"talent-match-go/pkg/log"
	"talent-match-go/pkg/tasks"
	"talent-match-go/pkg/token"
)

// EmbeddingTaskPublisher 发布画像向量重建任务。
type EmbeddingTaskPublisher interface {
	PublishProfileEmbedding(ctx context.Context, task tasks.ProfileEmbeddingTask) error
}

// ProfileUpdate 是画像编辑请求，nil 字段表示不修改。
type ProfileUpdate struct {
	DisplayName *string `json:"displayName"`
	Headline    *string `json:"headline"`
	Description *string `json:"description"`
	Experience  *string `json:"experience"`
	Category    *string `json:"category"`
	WebsiteURL  *string `json:"websiteUrl"`
	LinkedInURL *string `json:"linkedinUrl"`
	GitHubURL   *string `json:"githubUrl"`
}

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(username, password, role string) (*model.User, error)
	Login(username, password string) (accessToken, refreshToken string, err error)
	GetProfile(username string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error)
	Logout(ctx context.Context, tokenString string) error
	IsTokenRevoked(ctx context.Context, tokenString string) (bool, error)
	RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	blacklist  repository.TokenBlacklist
	publisher  EmbeddingTaskPublisher
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。publisher 为 nil 时画像编辑不会触发向量重建。
func NewUserService(userRepo repository.UserRepository, blacklist repository.TokenBlacklist, publisher EmbeddingTaskPublisher, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		publisher:  publisher,
		jwtManager: jwtManager,
	}
}

// Register 处理用户注册。role 为空时默认为 Talent，管理员不能自助注册。
func (s *userService) Register(username, password, role string) (*model.User, error) {
	if role == "" {
		role = model.RoleTalent
	}
	if role != model.RoleTalent && role != model.RoleRecruiter {
		return nil, fmt.Errorf("不支持的角色 %q: %w", role, ErrPrecondition)
	}

	_, err := s.userRepo.FindByUsername(username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username: username,
		Password: hashedPassword,
		Role:     role,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}
	log.Infof("[UserService] 新用户注册, username: %s, role: %s", username, role)
	return newUser, nil
}

// Login 校验凭证并签发 access token 与 refresh token。
func (s *userService) Login(username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

func (s *userService) issueTokens(user *model.User) (string, string, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GetProfile 根据用户名获取用户详细信息。
func (s *userService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, notFoundOr(err, "加载用户 %s 失败", username)
	}
	return user, nil
}

// UpdateProfile 更新画像文本字段。Talent 用户的画像保存后发布向量重建任务，
// 发布失败只记录日志，不回滚画像。
func (s *userService) UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error) {
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&user.DisplayName, update.DisplayName)
	apply(&user.Headline, update.Headline)
	apply(&user.Description, update.Description)
	apply(&user.Experience, update.Experience)
	apply(&user.Category, update.Category)
	apply(&user.WebsiteURL, update.WebsiteURL)
	apply(&user.LinkedInURL, update.LinkedInURL)
	apply(&user.GitHubURL, update.GitHubURL)

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("保存画像失败: %w", err)
	}

	if user.IsTalent() && s.publisher != nil {
		task := tasks.ProfileEmbeddingTask{
			UserID:      user.ID,
			Reason:      tasks.ReasonProfileUpdated,
			RequestedAt: time.Now(),
		}
		if err := s.publisher.PublishProfileEmbedding(ctx, task); err != nil {
			log.Errorf("[UserService] 发布画像向量任务失败, userID: %d, error: %v", user.ID, err)
		} else {
			log.Infof("[UserService] 已发布画像向量任务, userID: %d", user.ID)
		}
	}
	return user, nil
}

// Logout 将 token 加入黑名单，过期时间为 token 的剩余有效期。
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	return s.blacklist.Add(ctx, tokenString, time.Until(claims.ExpiresAt.Time))
}

func (s *userService) IsTokenRevoked(ctx context.Context, tokenString string) (bool, error) {
	return s.blacklist.Contains(ctx, tokenString)
}

// RefreshToken 验证 refresh token 并签发新的 access token 和 refresh token。
func (s *userService) RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error) {
	claims, err := s.jwtManager.VerifyTokenOfType(refreshTokenString, token.TypeRefresh)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}
	user, err := s.userRepo.FindByUsername(claims.Username)
	if err != nil {
		return "", "", errors.New("user not found")
	}
	return s.issueTokens(user)
}
