package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"listhub_v1_202602/internal/policy"
	"listhub_v1_202602/internal/service"
)

// ==================== 响应辅助 ====================

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
	})
}

// failValidation 422 校验失败，错误按字段归类，和前端表单逐字段展示对齐
func failValidation(c *gin.Context, field, message string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"code":    422,
		"message": message,
		"errors": gin.H{
			field: []string{message},
		},
	})
}

// requestMeta 从请求提取审计用的来源信息
func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// ==================== 领域错误映射 ====================

// handleDomainError 把服务层的领域错误映射为 HTTP 响应
// 策略拒绝是 403，能通过改请求修复的冲突是 422，目标缺失是 404
func handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, policy.ErrForbidden):
		fail(c, http.StatusForbidden, err.Error())

	case errors.Is(err, policy.ErrInvalidRoleChange),
		errors.Is(err, policy.ErrLastOwner):
		failValidation(c, "role", err.Error())

	case errors.Is(err, service.ErrMemberExists),
		errors.Is(err, service.ErrMemberInvited),
		errors.Is(err, service.ErrEmailExists):
		failValidation(c, "email", err.Error())

	case errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrInvalidSlug):
		failValidation(c, "slug", err.Error())

	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrWorkspaceNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrUserNotFound):
		fail(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrGoogleAuthFailed):
		fail(c, http.StatusUnauthorized, err.Error())

	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
