package policy

import (
	"errors"

	"listhub_v1_202602/internal/model"
)

// ==================== 错误定义 ====================

// 错误分两类：
// - ErrForbidden: 授权失败，对应 403，不可重试
// - ErrInvalidRoleChange / ErrLastOwner: 领域校验失败，对应 422，
//   由前端挂在具体表单字段上，人工修正后重试
var (
	ErrForbidden         = errors.New("无权限执行该操作")
	ErrInvalidRoleChange = errors.New("无效的角色变更")
	ErrLastOwner         = errors.New("工作区必须保留至少一名激活的 Owner")
)

// ==================== 成员操作决策 ====================

// DecideInvite 判定 actorRole 是否可以按 requestedRole 邀请新成员
// 规则：
//   - owner/admin/manager 可以邀请，content/viewer 不可以
//   - admin 不能邀请 owner
//   - manager 只能邀请 content / viewer
func DecideInvite(actorRole, requestedRole model.WorkspaceRole) error {
	switch actorRole {
	case model.RoleOwner:
		return nil
	case model.RoleAdmin:
		if requestedRole == model.RoleOwner {
			return ErrForbidden
		}
		return nil
	case model.RoleManager:
		if requestedRole != model.RoleContent && requestedRole != model.RoleViewer {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}

// DecideRoleChange 判定 actorRole 是否可以把目标成员从 targetRole 改为 newRole
// isSelf: 目标是否为操作者本人
// activeOwners: 工作区当前激活 owner 数，必须是事务内的实时值
// 规则：
//   - 仅 owner/admin 可改角色
//   - admin 不能授予 owner，也不能动 owner 的成员记录（包括降级）
//   - 本人不能把自己改成 viewer（领域校验，不是授权失败）
//   - 最后一名激活 owner 不能被降级
func DecideRoleChange(actorRole model.WorkspaceRole, isSelf bool, targetRole, newRole model.WorkspaceRole, activeOwners int64) error {
	if actorRole != model.RoleOwner && actorRole != model.RoleAdmin {
		return ErrForbidden
	}

	if actorRole == model.RoleAdmin && newRole == model.RoleOwner {
		return ErrForbidden
	}

	if actorRole == model.RoleAdmin && targetRole == model.RoleOwner {
		return ErrForbidden
	}

	if isSelf && newRole == model.RoleViewer {
		return ErrInvalidRoleChange
	}

	if targetRole == model.RoleOwner && newRole != model.RoleOwner && activeOwners <= 1 {
		return ErrLastOwner
	}

	return nil
}

// DecideRemoval 判定 actorRole 是否可以移除 targetRole 的成员
// 规则：
//   - 仅 owner/admin 可移除
//   - admin 不能移除 owner
//   - 最后一名激活 owner 不能被移除
func DecideRemoval(actorRole, targetRole model.WorkspaceRole, activeOwners int64) error {
	if actorRole != model.RoleOwner && actorRole != model.RoleAdmin {
		return ErrForbidden
	}

	if actorRole == model.RoleAdmin && targetRole == model.RoleOwner {
		return ErrForbidden
	}

	if targetRole == model.RoleOwner && activeOwners <= 1 {
		return ErrLastOwner
	}

	return nil
}

// ==================== 工作区操作决策 ====================

// CanUpdateWorkspace 仅 owner/admin 可修改工作区信息
func CanUpdateWorkspace(role model.WorkspaceRole) bool {
	return role == model.RoleOwner || role == model.RoleAdmin
}

// CanDeleteWorkspace 仅 owner 可删除工作区
func CanDeleteWorkspace(role model.WorkspaceRole) bool {
	return role == model.RoleOwner
}
