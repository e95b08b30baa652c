package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/repository"
)

func newAuthTestService(t *testing.T) (*AuthService, *gorm.DB) {
	db := setupServiceTestDB(t)
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewMemberRepository(db),
		NewAuditService(repository.NewAuditLogRepository(db)),
		&GoogleOAuthConfig{},
	)
	return svc, db
}

// ==================== Register 测试 ====================

func TestAuthService_Register(t *testing.T) {
	svc, db := newAuthTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Name:     "张三",
		Email:    "User@Example.com",
		Password: "supersecret",
	}, RequestMeta{IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("注册应直接签发 Token 对")
	}
	// 邮箱统一小写
	if resp.User.Email != "user@example.com" {
		t.Errorf("Email = %s, want user@example.com", resp.User.Email)
	}

	// 密码必须哈希存储
	var user model.User
	db.First(&user, resp.User.ID)
	if user.Password == "supersecret" {
		t.Fatal("密码不能明文存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("supersecret")); err != nil {
		t.Errorf("密码哈希校验失败: %v", err)
	}

	if got := countAuditLogs(t, db, model.AuditAuthRegister); got != 1 {
		t.Errorf("注册审计日志数 = %d, want 1", got)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthTestService(t)
	ctx := context.Background()

	req := &dto.RegisterRequest{Email: "dup@example.com", Password: "supersecret"}
	if _, err := svc.Register(ctx, req, RequestMeta{}); err != nil {
		t.Fatalf("首次注册失败: %v", err)
	}

	// 大小写不同也算重复
	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "DUP@example.com", Password: "supersecret"}, RequestMeta{})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("重复注册 error = %v, want ErrEmailExists", err)
	}
}

func TestAuthService_Register_ActivatesPendingInvites(t *testing.T) {
	svc, db := newAuthTestService(t)
	ctx := context.Background()

	// 注册前就存在发给该邮箱的邀请
	db.Create(&model.Workspace{Name: "WS", Slug: "ws-invite", CreatedByUserID: 999})
	db.Create(&model.WorkspaceMembership{
		WorkspaceID: 1, Role: model.RoleContent,
		Status: model.MemberStatusInvited, InvitedEmail: "invited@example.com",
	})

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "invited@example.com", Password: "supersecret",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if resp.ActivatedInvites != 1 {
		t.Errorf("ActivatedInvites = %d, want 1", resp.ActivatedInvites)
	}

	var m model.WorkspaceMembership
	db.Where("user_id = ?", resp.User.ID).First(&m)
	if m.Status != model.MemberStatusActive || m.Role != model.RoleContent {
		t.Errorf("邀请应激活并保留角色: status=%s role=%s", m.Status, m.Role)
	}
}

// ==================== Login 测试 ====================

func TestAuthService_Login(t *testing.T) {
	svc, db := newAuthTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "user@example.com", Password: "supersecret",
	}, RequestMeta{}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "User@Example.com", Password: "supersecret",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("登录应返回 access token")
	}

	var user model.User
	db.First(&user, resp.User.ID)
	if user.LastLoginAt == nil {
		t.Error("LastLoginAt 未更新")
	}

	if got := countAuditLogs(t, db, model.AuditAuthLogin); got != 1 {
		t.Errorf("登录审计日志数 = %d, want 1", got)
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc, _ := newAuthTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "user@example.com", Password: "supersecret",
	}, RequestMeta{}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	// 密码错误和用户不存在返回同一个错误
	_, err := svc.Login(ctx, &dto.LoginRequest{Email: "user@example.com", Password: "wrong"}, RequestMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("错误密码 error = %v, want ErrInvalidCredentials", err)
	}
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "supersecret"}, RequestMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("不存在用户 error = %v, want ErrInvalidCredentials", err)
	}
}

// ==================== RefreshToken 测试 ====================

func TestAuthService_RefreshToken(t *testing.T) {
	svc, _ := newAuthTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "user@example.com", Password: "supersecret",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	resp, err := svc.RefreshToken(ctx, reg.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("刷新应返回新的 Token 对")
	}

	// access token 不能拿来刷新
	if _, err := svc.RefreshToken(ctx, reg.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token 刷新 error = %v, want ErrInvalidToken", err)
	}

	if _, err := svc.RefreshToken(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("非法 token 刷新 error = %v, want ErrInvalidToken", err)
	}
}

// ==================== Logout 测试 ====================

func TestAuthService_Logout(t *testing.T) {
	svc, db := newAuthTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "user@example.com", Password: "supersecret",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	if err := svc.Logout(ctx, reg.User.ID, RequestMeta{IP: "10.0.0.1"}); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if got := countAuditLogs(t, db, model.AuditAuthLogout); got != 1 {
		t.Errorf("退出审计日志数 = %d, want 1", got)
	}

	if err := svc.Logout(ctx, 9999, RequestMeta{}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("不存在用户 Logout error = %v, want ErrUserNotFound", err)
	}
}

// ==================== Google 跳转地址测试 ====================

func TestAuthService_GoogleAuthURL(t *testing.T) {
	// 未配置 Google 登录时直接拒绝
	svc, db := newAuthTestService(t)
	if _, err := svc.GoogleAuthURL(""); !errors.Is(err, ErrGoogleAuthFailed) {
		t.Errorf("未配置 error = %v, want ErrGoogleAuthFailed", err)
	}

	enabled := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewMemberRepository(db),
		NewAuditService(repository.NewAuditLogRepository(db)),
		&GoogleOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURI:  "https://app.example.com/auth/google/callback",
		},
	)

	raw, err := enabled.GoogleAuthURL("xyz")
	if err != nil {
		t.Fatalf("GoogleAuthURL() error = %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("地址解析失败: %v", err)
	}
	q := parsed.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %s", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "https://app.example.com/auth/google/callback" {
		t.Errorf("redirect_uri = %s", q.Get("redirect_uri"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %s", q.Get("response_type"))
	}
	if q.Get("state") != "xyz" {
		t.Errorf("state = %s", q.Get("state"))
	}
}

// ==================== Profile 测试 ====================

func TestAuthService_GetProfile(t *testing.T) {
	svc, _ := newAuthTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "user@example.com", Password: "supersecret",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	info, err := svc.GetProfile(ctx, reg.User.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if info.Email != "user@example.com" {
		t.Errorf("Email = %s", info.Email)
	}

	if _, err := svc.GetProfile(ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("不存在用户 error = %v, want ErrUserNotFound", err)
	}
}

// Token 对的 subject 约定：access 进中间件，refresh 只进刷新接口
func TestGeneratedTokenSubjects(t *testing.T) {
	access, refresh, err := middleware.GenerateTokenPair(1, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	ac, err := middleware.ParseToken(access)
	if err != nil || ac.Subject != "access" {
		t.Errorf("access subject = %v err = %v", ac, err)
	}
	rc, err := middleware.ParseToken(refresh)
	if err != nil || rc.Subject != "refresh" {
		t.Errorf("refresh subject = %v err = %v", rc, err)
	}
}
