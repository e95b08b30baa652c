package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/policy"
	"listhub_v1_202602/internal/repository"
)

// ==================== 工作区成员中间件 ====================

// Context Keys
const (
	ContextKeyWorkspace     = "workspace"
	ContextKeyMembership    = "workspace_membership"
	ContextKeyWorkspaceRole = "workspace_role"
)

// WorkspaceMember 解析 :workspaceId 并校验当前用户是该工作区的激活成员
// 通过后把工作区、成员记录和角色注入 gin context
// 注意这里每个请求都重新读库取角色，不做进程内缓存，
// 角色可能在两次请求之间被其他管理员改掉
func WorkspaceMember(workspaceRepo repository.WorkspaceRepository, memberRepo repository.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, err := strconv.ParseInt(c.Param("workspaceId"), 10, 64)
		if err != nil || workspaceID <= 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    404,
				"message": "工作区不存在",
			})
			c.Abort()
			return
		}

		workspace, err := workspaceRepo.GetByID(c.Request.Context(), workspaceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    500,
				"message": err.Error(),
			})
			c.Abort()
			return
		}
		if workspace == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    404,
				"message": "工作区不存在",
			})
			c.Abort()
			return
		}

		userID := GetUserID(c)
		membership, err := memberRepo.FindByUser(c.Request.Context(), workspaceID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    500,
				"message": err.Error(),
			})
			c.Abort()
			return
		}
		if membership == nil || !membership.IsActive() {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "无权访问该工作区",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyWorkspace, workspace)
		c.Set(ContextKeyMembership, membership)
		c.Set(ContextKeyWorkspaceRole, membership.Role)

		c.Next()
	}
}

// RequirePermission 权限校验中间件，置于 WorkspaceMember 之后
func RequirePermission(perm policy.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetWorkspaceRole(c)
		if !policy.HasPermission(role, perm) {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "无权限执行该操作",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyPermission 多权限取或，任一命中即放行
// 用于 manage_members 隐含 invite_members 这类非嵌套权限组合
func RequireAnyPermission(perms ...policy.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetWorkspaceRole(c)
		for _, perm := range perms {
			if policy.HasPermission(role, perm) {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": "无权限执行该操作",
		})
		c.Abort()
	}
}

// ==================== 辅助函数 ====================

// GetWorkspace 从 Context 获取工作区
func GetWorkspace(c *gin.Context) *model.Workspace {
	if w, exists := c.Get(ContextKeyWorkspace); exists {
		return w.(*model.Workspace)
	}
	return nil
}

// GetMembership 从 Context 获取当前用户的成员记录
func GetMembership(c *gin.Context) *model.WorkspaceMembership {
	if m, exists := c.Get(ContextKeyMembership); exists {
		return m.(*model.WorkspaceMembership)
	}
	return nil
}

// GetWorkspaceRole 从 Context 获取当前用户在工作区的角色
func GetWorkspaceRole(c *gin.Context) model.WorkspaceRole {
	if r, exists := c.Get(ContextKeyWorkspaceRole); exists {
		return r.(model.WorkspaceRole)
	}
	return ""
}
