package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/service"
)

type AuditController struct {
	auditService *service.AuditService
}

func NewAuditController(s *service.AuditService) *AuditController {
	return &AuditController{auditService: s}
}

// List
// @Summary 工作区审计日志
// @Description 按时间倒序分页，支持按动作、操作者、目标类型和日期范围筛选
// @Tags Audit (审计模块)
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param action query string false "动作筛选，如 workspace.member.invited"
// @Param actor_user_id query int false "操作者筛选"
// @Param target_type query string false "目标类型筛选"
// @Param date_from query string false "起始日期 YYYY-MM-DD"
// @Param date_to query string false "结束日期 YYYY-MM-DD"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.PageResult
// @Failure 403 {object} map[string]interface{} "无 audit.view 权限"
// @Router /api/v1/workspaces/{workspaceId}/audit-logs [get]
func (ctrl *AuditController) List(c *gin.Context) {
	var query dto.AuditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	workspace := middleware.GetWorkspace(c)
	logs, total, err := ctrl.auditService.List(c.Request.Context(), workspace.ID, &query)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, dto.PageResult{List: logs, Total: total, Page: query.Page, PageSize: query.PageSize})
}
