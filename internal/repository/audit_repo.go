package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"listhub_v1_202602/internal/model"
)

// ==================== AuditLogRepository 审计日志仓库 ====================

// AuditFilter 审计日志筛选条件
type AuditFilter struct {
	Action      string
	ActorUserID int64
	TargetType  string
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
}

// AuditLogRepository 审计日志仓库接口（只追加）
type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	ListByWorkspace(ctx context.Context, workspaceID int64, filter AuditFilter) ([]model.AuditLog, int64, error)
	// DeleteBefore 按保留期清理，返回删除行数
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ==================== 实现 ====================

type auditLogRepo struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建审计日志仓库
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepo) ListByWorkspace(ctx context.Context, workspaceID int64, filter AuditFilter) ([]model.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Where("workspace_id = ?", workspaceID)

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ActorUserID > 0 {
		query = query.Where("actor_user_id = ?", filter.ActorUserID)
	}
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 25
	}

	var logs []model.AuditLog
	err := query.
		Preload("Actor").
		Order("id DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&logs).Error

	return logs, total, err
}

func (r *auditLogRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&model.AuditLog{})
	return res.RowsAffected, res.Error
}
