package dto

import (
	"time"

	"listhub_v1_202602/internal/model"
)

// ==================== 请求 ====================

// CreateWorkspaceRequest 创建工作区请求
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Slug string `json:"slug" binding:"omitempty,max=120"`
}

// UpdateWorkspaceRequest 更新工作区请求
type UpdateWorkspaceRequest struct {
	Name string `json:"name" binding:"omitempty,max=255"`
	Slug string `json:"slug" binding:"omitempty,max=120"`
}

// ==================== 响应 ====================

// WorkspaceInfo 工作区信息（带当前用户视角）
type WorkspaceInfo struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Slug         string              `json:"slug"`
	MembersCount int64               `json:"members_count"`
	CurrentRole  model.WorkspaceRole `json:"current_role"`
	CreatedAt    time.Time           `json:"created_at"`
}

// PageResult 通用分页响应
type PageResult struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
