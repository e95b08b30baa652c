package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 审计动作常量 ====================

const (
	AuditAuthRegister = "auth.register"
	AuditAuthLogin    = "auth.login"
	AuditAuthLogout   = "auth.logout"

	AuditWorkspaceCreated = "workspace.created"
	AuditWorkspaceUpdated = "workspace.updated"
	AuditWorkspaceDeleted = "workspace.deleted"

	AuditMemberInvited       = "workspace.member.invited"
	AuditMemberRoleChanged   = "workspace.member.role_changed"
	AuditMemberRemoved       = "workspace.member.removed"
	AuditMemberInviteExpired = "workspace.member.invite_expired"

	AuditProductCreated = "product.created"
	AuditProductUpdated = "product.updated"
	AuditProductDeleted = "product.deleted"
)

// AuditLog 审计日志（只追加，不更新）
type AuditLog struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_workspace_created" json:"created_at"`

	WorkspaceID *int64 `gorm:"index:idx_audit_workspace_created;index:idx_audit_workspace_action" json:"workspace_id"`
	ActorUserID *int64 `gorm:"index" json:"actor_user_id"`

	Action     string `gorm:"size:100;not null;index:idx_audit_workspace_action" json:"action"`
	TargetType string `gorm:"size:50" json:"target_type,omitempty"`
	TargetID   string `gorm:"size:50" json:"target_id,omitempty"`

	Meta datatypes.JSON `json:"meta,omitempty"`

	IP        string `gorm:"size:45" json:"ip,omitempty"`
	UserAgent string `gorm:"size:512" json:"user_agent,omitempty"`

	// 关联对象
	Actor *User `gorm:"foreignKey:ActorUserID" json:"actor,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
