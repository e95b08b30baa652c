package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/crypto/bcrypt"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/repository"
)

// ==================== 错误定义 ====================

var (
	ErrEmailExists        = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidToken       = errors.New("Token 无效或已过期")
	ErrGoogleAuthFailed   = errors.New("Google 登录失败")
)

// ==================== Google OAuth 配置 ====================

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleOAuthConfig Google OAuth 配置
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Enabled 是否配置了 Google 登录
func (c *GoogleOAuthConfig) Enabled() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != ""
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// ==================== AuthService 认证服务 ====================

// AuthService 注册 / 登录 / Token 刷新 / Google 登录
type AuthService struct {
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
	audit      *AuditService
	google     *GoogleOAuthConfig
	httpClient *resty.Client
}

// NewAuthService 创建认证服务
func NewAuthService(
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	audit *AuditService,
	google *GoogleOAuthConfig,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		memberRepo: memberRepo,
		audit:      audit,
		google:     google,
		httpClient: resty.New().SetTimeout(10 * time.Second),
	}
}

// ==================== 注册 ====================

// Register 注册新用户
// 注册成功即视为登录：签发 Token 并激活所有发给该邮箱的待接受邀请
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, rm RequestMeta) (*dto.LoginResponse, error) {
	email := strings.ToLower(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     model.UserRoleMember,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, model.AuditAuthRegister, &user.ID, nil,
		"user", itoa(user.ID), map[string]interface{}{"email": email}, rm)

	return s.issueSession(ctx, user, rm)
}

// ==================== 登录 ====================

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, rm RequestMeta) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	// 用户不存在和密码错误返回同一个错误，不暴露邮箱是否注册
	if user == nil || user.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.audit.Record(ctx, model.AuditAuthLogin, &user.ID, nil,
		"user", itoa(user.ID), map[string]interface{}{"email": user.Email}, rm)

	return s.issueSession(ctx, user, rm)
}

// ==================== Google 登录 ====================

// GoogleAuthURL 构造 Google 授权页地址，由前端跳转
// state 原样透传，回调时由前端自行校验
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if !s.google.Enabled() {
		return "", ErrGoogleAuthFailed
	}

	q := url.Values{}
	q.Set("client_id", s.google.ClientID)
	q.Set("redirect_uri", s.google.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	if state != "" {
		q.Set("state", state)
	}
	return googleAuthURL + "?" + q.Encode(), nil
}

// LoginWithGoogle 用授权码换取 Google 用户信息并登录
// 首次登录时自动创建账号；邮箱已注册的账号自动绑定 google_id
func (s *AuthService) LoginWithGoogle(ctx context.Context, code string, rm RequestMeta) (*dto.LoginResponse, error) {
	if !s.google.Enabled() {
		return nil, ErrGoogleAuthFailed
	}

	info, err := s.exchangeGoogleCode(ctx, code)
	if err != nil {
		log.Printf("[Auth] Google 授权码交换失败: %v", err)
		return nil, ErrGoogleAuthFailed
	}
	if info.Email == "" || !info.VerifiedEmail {
		return nil, ErrGoogleAuthFailed
	}
	email := strings.ToLower(info.Email)

	user, err := s.userRepo.GetByGoogleID(ctx, info.ID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			user.GoogleID = info.ID
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	if user == nil {
		now := time.Now()
		user = &model.User{
			Name:            info.Name,
			Email:           email,
			GoogleID:        info.ID,
			Role:            model.UserRoleMember,
			EmailVerifiedAt: &now,
		}
		if user.Name == "" {
			user.Name = strings.SplitN(email, "@", 2)[0]
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.audit.Record(ctx, model.AuditAuthRegister, &user.ID, nil,
			"user", itoa(user.ID), map[string]interface{}{"email": email, "provider": "google"}, rm)
	}

	s.audit.Record(ctx, model.AuditAuthLogin, &user.ID, nil,
		"user", itoa(user.ID), map[string]interface{}{"email": email, "provider": "google"}, rm)

	return s.issueSession(ctx, user, rm)
}

func (s *AuthService) exchangeGoogleCode(ctx context.Context, code string) (*googleUserInfo, error) {
	var token googleTokenResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"code":          code,
			"client_id":     s.google.ClientID,
			"client_secret": s.google.ClientSecret,
			"redirect_uri":  s.google.RedirectURI,
			"grant_type":    "authorization_code",
		}).
		SetResult(&token).
		Post(googleTokenURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("token 接口返回 %d: %s", resp.StatusCode(), resp.String())
	}
	if token.AccessToken == "" {
		return nil, errors.New("token 接口未返回 access_token")
	}

	var info googleUserInfo
	resp, err = s.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(&info).
		Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("userinfo 接口返回 %d: %s", resp.StatusCode(), resp.String())
	}

	return &info, nil
}

// ==================== Token 刷新 ====================

// RefreshToken 用 Refresh Token 换新的 Token 对
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(refreshToken)
	if err != nil || claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(middleware.GetJWTConfig().AccessTokenTTL),
	}, nil
}

// ==================== 退出登录 ====================

// Logout 退出登录
// 无状态 JWT 不在服务端吊销，Token 到期自然失效，这里只落审计供排查
func (s *AuthService) Logout(ctx context.Context, userID int64, rm RequestMeta) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	s.audit.Record(ctx, model.AuditAuthLogout, &user.ID, nil,
		"user", itoa(user.ID), map[string]interface{}{"email": user.Email}, rm)
	return nil
}

// ==================== 用户信息 ====================

// GetProfile 获取当前用户信息
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserInfo(user), nil
}

// ==================== 内部辅助 ====================

// issueSession 签发 Token 对并处理登录附带动作
func (s *AuthService) issueSession(ctx context.Context, user *model.User, rm RequestMeta) (*dto.LoginResponse, error) {
	// 激活所有发给该邮箱的待接受邀请，失败不阻断登录
	activated, err := s.memberRepo.ActivateByEmail(ctx, user.ID, user.Email)
	if err != nil {
		log.Printf("[Auth] 激活待邀请记录失败 user=%d: %v", user.ID, err)
		activated = 0
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("[Auth] 更新最后登录时间失败 user=%d: %v", user.ID, err)
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        time.Now().Add(middleware.GetJWTConfig().AccessTokenTTL),
		User:             toUserInfo(user),
		ActivatedInvites: activated,
	}, nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
