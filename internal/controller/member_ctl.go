package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/service"
)

type MemberController struct {
	memberService *service.MemberService
}

func NewMemberController(s *service.MemberService) *MemberController {
	return &MemberController{memberService: s}
}

// List
// @Summary 工作区成员列表
// @Description 含激活成员和待接受的邀请
// @Tags Member (成员模块)
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.PageResult
// @Router /api/v1/workspaces/{workspaceId}/members [get]
func (ctrl *MemberController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	workspace := middleware.GetWorkspace(c)
	list, total, err := ctrl.memberService.List(c.Request.Context(), workspace.ID, page, pageSize)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, dto.PageResult{List: list, Total: total, Page: page, PageSize: pageSize})
}

// Invite
// @Summary 邀请成员
// @Description owner/admin/manager 可邀请；admin 不能邀请 owner，manager 只能邀请 content/viewer
// @Tags Member (成员模块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param body body dto.InviteMemberRequest true "邀请信息"
// @Success 201 {object} dto.MemberInfo
// @Failure 403 {object} map[string]interface{} "角色不允许"
// @Failure 422 {object} map[string]interface{} "已是成员/已被邀请"
// @Router /api/v1/workspaces/{workspaceId}/members [post]
func (ctrl *MemberController) Invite(c *gin.Context) {
	var req dto.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	workspace := middleware.GetWorkspace(c)
	membership, err := ctrl.memberService.Invite(c.Request.Context(),
		workspace.ID, middleware.GetUserID(c), &req, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	created(c, dto.FromMembership(membership))
}

// UpdateRole
// @Summary 变更成员角色
// @Description owner/admin 可操作；admin 不能动 owner；不能把自己降为 viewer；不能清空最后一个 owner
// @Tags Member (成员模块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param memberId path int true "成员记录ID"
// @Param body body dto.UpdateMemberRequest true "新角色"
// @Success 200 {object} dto.MemberInfo
// @Failure 403 {object} map[string]interface{} "角色不允许"
// @Failure 422 {object} map[string]interface{} "无效变更/最后 owner 保护"
// @Router /api/v1/workspaces/{workspaceId}/members/{memberId} [put]
func (ctrl *MemberController) UpdateRole(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Param("memberId"), 10, 64)
	if err != nil || memberID <= 0 {
		fail(c, http.StatusNotFound, "成员不存在")
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	workspace := middleware.GetWorkspace(c)
	membership, err := ctrl.memberService.UpdateRole(c.Request.Context(),
		workspace.ID, middleware.GetUserID(c), memberID, &req, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, dto.FromMembership(membership))
}

// Remove
// @Summary 移除成员
// @Description owner/admin 可操作；admin 不能移除 owner；不能移除最后一个激活 owner
// @Tags Member (成员模块)
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param memberId path int true "成员记录ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "角色不允许"
// @Failure 422 {object} map[string]interface{} "最后 owner 保护"
// @Router /api/v1/workspaces/{workspaceId}/members/{memberId} [delete]
func (ctrl *MemberController) Remove(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Param("memberId"), 10, 64)
	if err != nil || memberID <= 0 {
		fail(c, http.StatusNotFound, "成员不存在")
		return
	}

	workspace := middleware.GetWorkspace(c)
	if err := ctrl.memberService.Remove(c.Request.Context(),
		workspace.ID, middleware.GetUserID(c), memberID, requestMeta(c)); err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, nil)
}
