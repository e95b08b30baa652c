package policy

import "listhub_v1_202602/internal/model"

// ==================== 权限标签 ====================

// Permission 权限标签
type Permission string

const (
	PermWorkspaceView     Permission = "workspace.view"
	PermManageMembers     Permission = "workspace.manage_members"
	PermInviteMembers     Permission = "workspace.invite_members"
	PermWorkspaceDelete   Permission = "workspace.delete"
	PermTransferOwnership Permission = "workspace.transfer_ownership"
	PermProductsWrite     Permission = "products.write"
	PermListingsPublish   Permission = "listings.publish"
	PermMappingsWrite     Permission = "mappings.write"
	PermAuditView         Permission = "audit.view"
)

// ==================== 角色 -> 权限表 ====================

// 静态配置表，不按租户存储
// 注意权限集不是严格嵌套的：manager 没有 manage_members 但有 invite_members，
// content 没有 audit.view 而 viewer 有
var rolePermissions = map[model.WorkspaceRole][]Permission{
	model.RoleOwner: {
		PermWorkspaceView,
		PermManageMembers,
		PermProductsWrite,
		PermListingsPublish,
		PermMappingsWrite,
		PermAuditView,
		PermWorkspaceDelete,
		PermTransferOwnership,
	},
	model.RoleAdmin: {
		PermWorkspaceView,
		PermManageMembers,
		PermProductsWrite,
		PermListingsPublish,
		PermMappingsWrite,
		PermAuditView,
	},
	model.RoleManager: {
		PermWorkspaceView,
		PermProductsWrite,
		PermListingsPublish,
		PermMappingsWrite,
		PermAuditView,
		PermInviteMembers,
	},
	model.RoleContent: {
		PermWorkspaceView,
		PermProductsWrite,
		PermListingsPublish,
	},
	model.RoleViewer: {
		PermWorkspaceView,
		PermAuditView,
	},
}

// PermissionsFor 返回角色的权限集
// 未知角色返回空集，不报错
func PermissionsFor(role model.WorkspaceRole) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission 判断角色是否拥有某权限
func HasPermission(role model.WorkspaceRole, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
