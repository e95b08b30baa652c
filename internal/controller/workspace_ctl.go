package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/service"
)

type WorkspaceController struct {
	workspaceService *service.WorkspaceService
}

func NewWorkspaceController(s *service.WorkspaceService) *WorkspaceController {
	return &WorkspaceController{workspaceService: s}
}

// List
// @Summary 当前用户所在的工作区列表
// @Tags Workspace (工作区模块)
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(15)
// @Success 200 {object} dto.PageResult
// @Router /api/v1/workspaces [get]
func (ctrl *WorkspaceController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "15"))

	list, total, err := ctrl.workspaceService.List(c.Request.Context(), middleware.GetUserID(c), page, pageSize)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, dto.PageResult{List: list, Total: total, Page: page, PageSize: pageSize})
}

// Create
// @Summary 创建工作区
// @Description 创建者自动成为该工作区的 owner
// @Tags Workspace (工作区模块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateWorkspaceRequest true "工作区信息"
// @Success 201 {object} model.Workspace
// @Failure 422 {object} map[string]interface{} "标识被占用/格式错误"
// @Router /api/v1/workspaces [post]
func (ctrl *WorkspaceController) Create(c *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	workspace, err := ctrl.workspaceService.Create(c.Request.Context(), middleware.GetUserID(c), &req, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	created(c, workspace)
}

// Get
// @Summary 工作区详情
// @Tags Workspace (工作区模块)
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Success 200 {object} dto.WorkspaceInfo
// @Router /api/v1/workspaces/{workspaceId} [get]
func (ctrl *WorkspaceController) Get(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)

	info, err := ctrl.workspaceService.Get(c.Request.Context(), workspace.ID, middleware.GetUserID(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, info)
}

// Update
// @Summary 更新工作区
// @Description owner 和 admin 可操作
// @Tags Workspace (工作区模块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param body body dto.UpdateWorkspaceRequest true "更新内容"
// @Success 200 {object} model.Workspace
// @Failure 403 {object} map[string]interface{} "无权限"
// @Router /api/v1/workspaces/{workspaceId} [put]
func (ctrl *WorkspaceController) Update(c *gin.Context) {
	var req dto.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	workspace := middleware.GetWorkspace(c)
	updated, err := ctrl.workspaceService.Update(c.Request.Context(), workspace.ID, middleware.GetUserID(c), &req, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, updated)
}

// Delete
// @Summary 删除工作区
// @Description 仅 owner 可操作，成员记录一并清理
// @Tags Workspace (工作区模块)
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "无权限"
// @Router /api/v1/workspaces/{workspaceId} [delete]
func (ctrl *WorkspaceController) Delete(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)

	if err := ctrl.workspaceService.Delete(c.Request.Context(), workspace.ID, middleware.GetUserID(c), requestMeta(c)); err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, nil)
}
