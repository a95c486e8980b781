// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 用户角色。只有 Talent 角色的画像参与搜索。
const (
	RoleTalent    = "Talent"
	RoleRecruiter = "Recruiter"
	RoleAdmin     = "Admin"
)

// User 对应 'users' 表，同时承载人才画像（CandidateProfile）的文本字段。
// 画像字段均为可选，由画像编辑接口维护。
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	Role        string    `gorm:"type:varchar(20);index;not null;default:'Talent'" json:"role"`
	DisplayName string    `gorm:"type:varchar(255)" json:"displayName"`
	Headline    string    `gorm:"type:varchar(255)" json:"headline"`
	Description string    `gorm:"type:text" json:"description"`
	Experience  string    `gorm:"type:text" json:"experience"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	WebsiteURL  string    `gorm:"type:varchar(512)" json:"websiteUrl"`
	LinkedInURL string    `gorm:"type:varchar(512)" json:"linkedinUrl"`
	GitHubURL   string    `gorm:"type:varchar(512)" json:"githubUrl"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}

// IsTalent 判断该用户是否参与人才搜索。
func (u *User) IsTalent() bool {
	return u.Role == RoleTalent
}

// Name 返回用于展示和向量化的名称，未设置显示名时回退到用户名。
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
