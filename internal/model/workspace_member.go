package model

import "time"

// ==================== 工作区角色 / 成员状态 ====================

// WorkspaceRole 工作区内角色
type WorkspaceRole string

const (
	RoleOwner   WorkspaceRole = "owner"
	RoleAdmin   WorkspaceRole = "admin"
	RoleManager WorkspaceRole = "manager"
	RoleContent WorkspaceRole = "content"
	RoleViewer  WorkspaceRole = "viewer"
)

// ValidRole 校验角色取值
func ValidRole(r WorkspaceRole) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleContent, RoleViewer:
		return true
	}
	return false
}

// MemberStatus 成员状态
// 状态机只有一条边: invited -> active（受邀用户用匹配邮箱登录后激活），不可逆
type MemberStatus string

const (
	MemberStatusActive  MemberStatus = "active"
	MemberStatusInvited MemberStatus = "invited"
)

// ==================== WorkspaceMembership ====================

// WorkspaceMembership 用户（或待注册的受邀邮箱）与工作区的关联
// UserID 为空表示受邀邮箱还没有对应账号，此时 InvitedEmail 必填
type WorkspaceMembership struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 联合唯一索引：一个用户在一个工作区只有一条记录
	// user_id 为 NULL 的待邀请行不受唯一约束限制（按邮箱去重在业务层做）
	WorkspaceID int64  `gorm:"not null;uniqueIndex:idx_workspace_user;index:idx_workspace_role;index:idx_workspace_status" json:"workspace_id"`
	UserID      *int64 `gorm:"index;uniqueIndex:idx_workspace_user" json:"user_id"`

	Role   WorkspaceRole `gorm:"size:20;default:'viewer';index:idx_workspace_role" json:"role"`
	Status MemberStatus  `gorm:"size:20;default:'invited';index:idx_workspace_status" json:"status"`

	InvitedEmail    string `gorm:"size:255;index" json:"invited_email,omitempty"`
	InvitedByUserID *int64 `json:"invited_by_user_id,omitempty"`

	JoinedAt *time.Time `json:"joined_at"`

	// 关联对象
	Workspace *Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	InvitedBy *User      `gorm:"foreignKey:InvitedByUserID" json:"invited_by,omitempty"`
}

func (WorkspaceMembership) TableName() string {
	return "workspace_memberships"
}

// IsActive 是否为激活成员
func (m *WorkspaceMembership) IsActive() bool {
	return m.Status == MemberStatusActive
}

// Email 成员对外展示的邮箱：已绑定用户取用户邮箱，否则取受邀邮箱
func (m *WorkspaceMembership) Email() string {
	if m.User != nil {
		return m.User.Email
	}
	return m.InvitedEmail
}
