package task

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/repository"
)

// ==================== CleanupTask 清理任务 ====================

// CleanupTask 定时清理过期邀请和超期审计日志
type CleanupTask struct {
	uow  *repository.UnitOfWork
	cron *cron.Cron

	// 邀请保留期，超过后作废
	inviteTTL time.Duration
	// 审计日志保留期，0 表示永久保留
	auditRetention time.Duration
}

// NewCleanupTask 创建清理任务
func NewCleanupTask(uow *repository.UnitOfWork, inviteTTL, auditRetention time.Duration) *CleanupTask {
	if inviteTTL <= 0 {
		inviteTTL = 14 * 24 * time.Hour
	}
	return &CleanupTask{
		uow:            uow,
		cron:           cron.New(cron.WithSeconds()),
		inviteTTL:      inviteTTL,
		auditRetention: auditRetention,
	}
}

// Start 启动定时任务
func (t *CleanupTask) Start() {
	// 定时策略：每天凌晨 03:30 执行
	_, err := t.cron.AddFunc("0 30 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.execute(ctx)
	})

	if err != nil {
		log.Fatalf("[CleanupTask] 无法启动定时任务: %v", err)
	}

	t.cron.Start()
	log.Println("[CleanupTask] 清理任务已启动 (每天 03:30)")
}

// Stop 停止任务
func (t *CleanupTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[CleanupTask] 清理任务已停止")
}

// RunOnce 立即执行一次（手动触发/测试用）
func (t *CleanupTask) RunOnce(ctx context.Context) {
	t.execute(ctx)
}

func (t *CleanupTask) execute(ctx context.Context) {
	t.expireInvites(ctx)
	t.trimAuditLogs(ctx)
}

// expireInvites 作废超过保留期仍未接受的邀请，逐条记审计
func (t *CleanupTask) expireInvites(ctx context.Context) {
	before := time.Now().Add(-t.inviteTTL)

	invites, err := t.uow.Members.ListExpiredInvites(ctx, before)
	if err != nil {
		log.Printf("[CleanupTask] 查询过期邀请失败: %v", err)
		return
	}
	if len(invites) == 0 {
		return
	}

	var expired int
	for i := range invites {
		invite := &invites[i]

		err := t.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
			if err := uow.Members.DeleteByID(ctx, invite.ID); err != nil {
				return err
			}

			entry := &model.AuditLog{
				WorkspaceID: &invite.WorkspaceID,
				Action:      model.AuditMemberInviteExpired,
				TargetType:  "workspace_member",
				TargetID:    formatID(invite.ID),
			}
			return uow.Audit.Create(ctx, entry)
		})
		if err != nil {
			log.Printf("[CleanupTask] 作废邀请失败 id=%d: %v", invite.ID, err)
			continue
		}
		expired++
	}

	log.Printf("[CleanupTask] 已作废 %d 条过期邀请", expired)
}

// trimAuditLogs 删除超过保留期的审计日志
func (t *CleanupTask) trimAuditLogs(ctx context.Context) {
	if t.auditRetention <= 0 {
		return
	}

	before := time.Now().Add(-t.auditRetention)
	deleted, err := t.uow.Audit.DeleteBefore(ctx, before)
	if err != nil {
		log.Printf("[CleanupTask] 清理审计日志失败: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[CleanupTask] 已清理 %d 条超期审计日志", deleted)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
