package model

import "time"

// 系统级角色: admin (平台管理员), member (普通用户)
// 注意区分：这是系统的角色，WorkspaceMembership 里的是工作区内的角色
const (
	UserRoleAdmin  = "admin"
	UserRoleMember = "member"
)

// User 系统用户
type User struct {
	BaseModel
	Name     string `gorm:"size:255" json:"name"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255" json:"-"` // 哈希密码，Google 登录用户可为空
	GoogleID string `gorm:"size:64;index" json:"-"`

	Role string `gorm:"size:20;default:'member'" json:"role"`

	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// 用户在各工作区的成员关系
	Memberships []WorkspaceMembership `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
