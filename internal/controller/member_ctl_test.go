package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/policy"
	"listhub_v1_202602/internal/repository"
	"listhub_v1_202602/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试环境搭建 ====================

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupMemberTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{}, &model.Workspace{}, &model.WorkspaceMembership{}, &model.AuditLog{},
	); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	uow := repository.NewUnitOfWork(db)
	memberCtrl := NewMemberController(service.NewMemberService(uow))

	workspaceRepo := repository.NewWorkspaceRepository(db)
	memberRepo := repository.NewMemberRepository(db)

	r := gin.New()
	ws := r.Group("/api/v1/workspaces/:workspaceId")
	ws.Use(middleware.JWTAuth(), middleware.WorkspaceMember(workspaceRepo, memberRepo))
	{
		ws.GET("/members", memberCtrl.List)
		ws.POST("/members", middleware.RequireAnyPermission(policy.PermManageMembers, policy.PermInviteMembers), memberCtrl.Invite)
		ws.PUT("/members/:memberId", middleware.RequirePermission(policy.PermManageMembers), memberCtrl.UpdateRole)
		ws.DELETE("/members/:memberId", middleware.RequirePermission(policy.PermManageMembers), memberCtrl.Remove)
	}

	return &testEnv{router: r, db: db}
}

func (e *testEnv) seedUser(t *testing.T, email string) *model.User {
	user := &model.User{Name: email, Email: email, Password: "hashed"}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

func (e *testEnv) seedWorkspaceWithMember(t *testing.T, user *model.User, role model.WorkspaceRole) (*model.Workspace, *model.WorkspaceMembership) {
	ws := &model.Workspace{
		Name: "测试工作区", Slug: fmt.Sprintf("ws-%d", user.ID), CreatedByUserID: user.ID,
	}
	if err := e.db.Create(ws).Error; err != nil {
		t.Fatalf("创建测试工作区失败: %v", err)
	}
	now := time.Now()
	m := &model.WorkspaceMembership{
		WorkspaceID: ws.ID, UserID: &user.ID,
		Role: role, Status: model.MemberStatusActive, JoinedAt: &now,
	}
	if err := e.db.Create(m).Error; err != nil {
		t.Fatalf("创建测试成员失败: %v", err)
	}
	return ws, m
}

func (e *testEnv) addMember(t *testing.T, wsID int64, user *model.User, role model.WorkspaceRole) *model.WorkspaceMembership {
	now := time.Now()
	m := &model.WorkspaceMembership{
		WorkspaceID: wsID, UserID: &user.ID,
		Role: role, Status: model.MemberStatusActive, JoinedAt: &now,
	}
	if err := e.db.Create(m).Error; err != nil {
		t.Fatalf("创建测试成员失败: %v", err)
	}
	return m
}

func (e *testEnv) request(t *testing.T, user *model.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := middleware.GenerateAccessToken(user.ID, user.Email)
		if err != nil {
			t.Fatalf("生成测试 token 失败: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// ==================== 认证 / 成员身份测试 ====================

func TestMemberAPI_RequiresAuth(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	ws, _ := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)

	w := env.request(t, nil, http.MethodGet, fmt.Sprintf("/api/v1/workspaces/%d/members", ws.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMemberAPI_NonMemberGets403(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	outsider := env.seedUser(t, "outsider@example.com")
	ws, _ := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)

	w := env.request(t, outsider, http.MethodGet, fmt.Sprintf("/api/v1/workspaces/%d/members", ws.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMemberAPI_UnknownWorkspaceGets404(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	env.seedWorkspaceWithMember(t, owner, model.RoleOwner)

	w := env.request(t, owner, http.MethodGet, "/api/v1/workspaces/9999/members", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== 邀请接口测试 ====================

func TestMemberAPI_Invite(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	ws, _ := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)

	w := env.request(t, owner, http.MethodPost,
		fmt.Sprintf("/api/v1/workspaces/%d/members", ws.ID),
		map[string]string{"email": "new@example.com", "role": "content"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			Email  string `json:"email"`
			Status string `json:"status"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.Data.Email)
	assert.Equal(t, "invited", resp.Data.Status)
}

func TestMemberAPI_Invite_ViewerForbiddenByMiddleware(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	viewer := env.seedUser(t, "viewer@example.com")
	ws, _ := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)
	env.addMember(t, ws.ID, viewer, model.RoleViewer)

	// viewer 没有 members.invite 权限，在中间件层就被拦
	w := env.request(t, viewer, http.MethodPost,
		fmt.Sprintf("/api/v1/workspaces/%d/members", ws.ID),
		map[string]string{"email": "x@example.com", "role": "viewer"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMemberAPI_Invite_DuplicateGets422WithFieldErrors(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	member := env.seedUser(t, "member@example.com")
	ws, _ := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)
	env.addMember(t, ws.ID, member, model.RoleViewer)

	w := env.request(t, owner, http.MethodPost,
		fmt.Sprintf("/api/v1/workspaces/%d/members", ws.ID),
		map[string]string{"email": "member@example.com", "role": "viewer"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "email")
}

func TestMemberAPI_Invite_BadRoleGets422(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	ws, _ := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)

	w := env.request(t, owner, http.MethodPost,
		fmt.Sprintf("/api/v1/workspaces/%d/members", ws.ID),
		map[string]string{"email": "x@example.com", "role": "superuser"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ==================== 角色变更接口测试 ====================

func TestMemberAPI_UpdateRole_LastOwnerGets422(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	ws, ownerM := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)

	w := env.request(t, owner, http.MethodPut,
		fmt.Sprintf("/api/v1/workspaces/%d/members/%d", ws.ID, ownerM.ID),
		map[string]string{"role": "admin"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "role")
}

func TestMemberAPI_UpdateRole_AdminTouchingOwnerGets403(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	admin := env.seedUser(t, "admin@example.com")
	ws, ownerM := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)
	env.addMember(t, ws.ID, admin, model.RoleAdmin)

	w := env.request(t, admin, http.MethodPut,
		fmt.Sprintf("/api/v1/workspaces/%d/members/%d", ws.ID, ownerM.ID),
		map[string]string{"role": "viewer"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ==================== 移除接口测试 ====================

func TestMemberAPI_Remove(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	target := env.seedUser(t, "target@example.com")
	ws, _ := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)
	targetM := env.addMember(t, ws.ID, target, model.RoleContent)

	w := env.request(t, owner, http.MethodDelete,
		fmt.Sprintf("/api/v1/workspaces/%d/members/%d", ws.ID, targetM.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&model.WorkspaceMembership{}).Where("id = ?", targetM.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// 移除后再访问工作区被拒
	w = env.request(t, target, http.MethodGet,
		fmt.Sprintf("/api/v1/workspaces/%d/members", ws.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMemberAPI_Remove_NotFoundGets404(t *testing.T) {
	env := setupMemberTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	ws, _ := env.seedWorkspaceWithMember(t, owner, model.RoleOwner)

	w := env.request(t, owner, http.MethodDelete,
		fmt.Sprintf("/api/v1/workspaces/%d/members/9999", ws.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
