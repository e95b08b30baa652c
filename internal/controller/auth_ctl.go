package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/service"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(s *service.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// Register
// @Summary 注册新用户
// @Description 邮箱密码注册，注册成功直接返回 Token 并激活发给该邮箱的待接受邀请
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.LoginResponse
// @Failure 422 {object} map[string]interface{} "邮箱已注册/参数错误"
// @Router /api/v1/auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	resp, err := ctrl.authService.Register(c.Request.Context(), &req, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	created(c, resp)
}

// Login
// @Summary 邮箱密码登录
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} map[string]interface{} "邮箱或密码错误"
// @Router /api/v1/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	resp, err := ctrl.authService.Login(c.Request.Context(), &req, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, resp)
}

// GoogleRedirect
// @Summary Google 登录跳转地址
// @Description 返回 Google 授权页地址，前端拿到后自行跳转
// @Tags Auth (认证模块)
// @Produce json
// @Param state query string false "透传的防 CSRF 状态值"
// @Success 200 {object} map[string]interface{} "data.url 为授权页地址"
// @Failure 401 {object} map[string]interface{} "未配置 Google 登录"
// @Router /api/v1/auth/google/redirect [get]
func (ctrl *AuthController) GoogleRedirect(c *gin.Context) {
	authURL, err := ctrl.authService.GoogleAuthURL(c.Query("state"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, gin.H{"url": authURL})
}

// GoogleCallback
// @Summary Google 登录回调
// @Description 接收 Google 返回的授权码，换取用户信息后登录或自动注册
// @Tags Auth (认证模块)
// @Produce json
// @Param code query string true "授权码"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} map[string]interface{} "Google 登录失败"
// @Router /api/v1/auth/google/callback [get]
func (ctrl *AuthController) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		fail(c, http.StatusBadRequest, "缺少授权码")
		return
	}

	resp, err := ctrl.authService.LoginWithGoogle(c.Request.Context(), code, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, resp)
}

// RefreshToken
// @Summary 刷新 Token
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} map[string]interface{} "Token 无效或已过期"
// @Router /api/v1/auth/refresh [post]
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	resp, err := ctrl.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, resp)
}

// Logout
// @Summary 退出登录
// @Description 无状态 JWT 由客户端丢弃，服务端只记录审计
// @Tags Auth (认证模块)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/logout [post]
func (ctrl *AuthController) Logout(c *gin.Context) {
	if err := ctrl.authService.Logout(c.Request.Context(), middleware.GetUserID(c), requestMeta(c)); err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, nil)
}

// Profile
// @Summary 当前用户信息
// @Tags Auth (认证模块)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Router /api/v1/auth/me [get]
func (ctrl *AuthController) Profile(c *gin.Context) {
	info, err := ctrl.authService.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, info)
}
