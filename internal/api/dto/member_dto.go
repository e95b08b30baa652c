package dto

import (
	"time"

	"listhub_v1_202602/internal/model"
)

// ==================== 请求 ====================

// InviteMemberRequest 邀请成员请求
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Role  string `json:"role" binding:"required,oneof=owner admin manager content viewer"`
}

// UpdateMemberRequest 变更成员角色请求
type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=owner admin manager content viewer"`
}

// ==================== 响应 ====================

// MemberInfo 成员信息
type MemberInfo struct {
	ID       int64               `json:"id"`
	UserID   *int64              `json:"user_id"`
	Name     string              `json:"name,omitempty"`
	Email    string              `json:"email"`
	Role     model.WorkspaceRole `json:"role"`
	Status   model.MemberStatus  `json:"status"`
	JoinedAt *time.Time          `json:"joined_at,omitempty"`

	InvitedByName string `json:"invited_by_name,omitempty"`
}

// FromMembership 由成员记录构造响应
func FromMembership(m *model.WorkspaceMembership) *MemberInfo {
	info := &MemberInfo{
		ID:       m.ID,
		UserID:   m.UserID,
		Email:    m.Email(),
		Role:     m.Role,
		Status:   m.Status,
		JoinedAt: m.JoinedAt,
	}
	if m.User != nil {
		info.Name = m.User.Name
	}
	if m.InvitedBy != nil {
		info.InvitedByName = m.InvitedBy.Name
	}
	return info
}
