package task

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/repository"
)

func setupTaskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(&model.User{}, &model.Workspace{}, &model.WorkspaceMembership{}, &model.AuditLog{})
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func TestCleanupTask_ExpireInvites(t *testing.T) {
	db := setupTaskTestDB(t)
	uow := repository.NewUnitOfWork(db)
	ct := NewCleanupTask(uow, 14*24*time.Hour, 0)

	// 超期邀请
	stale := &model.WorkspaceMembership{
		WorkspaceID: 1, Role: model.RoleViewer,
		Status: model.MemberStatusInvited, InvitedEmail: "stale@example.com",
	}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("创建测试数据失败: %v", err)
	}
	db.Model(stale).Update("created_at", time.Now().Add(-20*24*time.Hour))

	// 新邀请和激活成员不受影响
	userID := int64(7)
	now := time.Now()
	db.Create(&model.WorkspaceMembership{
		WorkspaceID: 1, Role: model.RoleViewer,
		Status: model.MemberStatusInvited, InvitedEmail: "fresh@example.com",
	})
	db.Create(&model.WorkspaceMembership{
		WorkspaceID: 1, UserID: &userID, Role: model.RoleOwner,
		Status: model.MemberStatusActive, JoinedAt: &now,
	})

	ct.RunOnce(context.Background())

	var remaining []model.WorkspaceMembership
	db.Find(&remaining)
	if len(remaining) != 2 {
		t.Fatalf("剩余成员记录 = %d, want 2", len(remaining))
	}
	for _, m := range remaining {
		if m.InvitedEmail == "stale@example.com" {
			t.Error("超期邀请未被清理")
		}
	}

	// 作废动作落审计
	var audits int64
	db.Model(&model.AuditLog{}).Where("action = ?", model.AuditMemberInviteExpired).Count(&audits)
	if audits != 1 {
		t.Errorf("审计日志数 = %d, want 1", audits)
	}
}

func TestCleanupTask_TrimAuditLogs(t *testing.T) {
	db := setupTaskTestDB(t)
	uow := repository.NewUnitOfWork(db)
	ct := NewCleanupTask(uow, 14*24*time.Hour, 90*24*time.Hour)

	wsID := int64(1)
	old := &model.AuditLog{WorkspaceID: &wsID, Action: "auth.login"}
	db.Create(old)
	db.Model(old).Update("created_at", time.Now().Add(-180*24*time.Hour))
	db.Create(&model.AuditLog{WorkspaceID: &wsID, Action: "auth.login"})

	ct.RunOnce(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	if count != 1 {
		t.Errorf("剩余审计日志 = %d, want 1", count)
	}
}

func TestCleanupTask_RetentionDisabled(t *testing.T) {
	db := setupTaskTestDB(t)
	uow := repository.NewUnitOfWork(db)
	// auditRetention = 0 表示永久保留
	ct := NewCleanupTask(uow, 14*24*time.Hour, 0)

	old := &model.AuditLog{Action: "auth.login"}
	db.Create(old)
	db.Model(old).Update("created_at", time.Now().Add(-365*24*time.Hour))

	ct.RunOnce(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	if count != 1 {
		t.Errorf("保留期禁用时审计日志不应被清理, count = %d", count)
	}
}
