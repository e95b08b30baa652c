package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"listhub_v1_202602/internal/model"
)

// ==================== 接口定义 ====================

// WorkspaceRepository 工作区仓储接口
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *model.Workspace) error
	GetByID(ctx context.Context, id int64) (*model.Workspace, error)
	Update(ctx context.Context, workspace *model.Workspace) error
	// Delete 软删除工作区并物理删除其全部成员记录
	Delete(ctx context.Context, id int64) error

	// ListByUserID 用户激活成员身份所在的工作区，按 ID 倒序分页
	ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]model.Workspace, int64, error)
	CountActiveMembers(ctx context.Context, workspaceID int64) (int64, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// ==================== 仓储实现 ====================

type workspaceRepo struct {
	db *gorm.DB
}

// NewWorkspaceRepository 创建工作区仓储
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepo{db: db}
}

func (r *workspaceRepo) Create(ctx context.Context, workspace *model.Workspace) error {
	return r.db.WithContext(ctx).Create(workspace).Error
}

func (r *workspaceRepo) GetByID(ctx context.Context, id int64) (*model.Workspace, error) {
	var workspace model.Workspace
	err := r.db.WithContext(ctx).First(&workspace, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &workspace, err
}

func (r *workspaceRepo) Update(ctx context.Context, workspace *model.Workspace) error {
	return r.db.WithContext(ctx).Save(workspace).Error
}

func (r *workspaceRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 成员记录随工作区级联清理（硬删除，工作区本身软删除）
		if err := tx.Where("workspace_id = ?", id).
			Delete(&model.WorkspaceMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Workspace{}, id).Error
	})
}

func (r *workspaceRepo) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]model.Workspace, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Workspace{}).
		Joins("JOIN workspace_memberships m ON m.workspace_id = workspaces.id").
		Where("m.user_id = ? AND m.status = ?", userID, model.MemberStatusActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 15
	}

	var workspaces []model.Workspace
	err := query.
		Order("workspaces.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&workspaces).Error

	return workspaces, total, err
}

func (r *workspaceRepo) CountActiveMembers(ctx context.Context, workspaceID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WorkspaceMembership{}).
		Where("workspace_id = ? AND status = ?", workspaceID, model.MemberStatusActive).
		Count(&count).Error
	return count, err
}

func (r *workspaceRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Workspace{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}
