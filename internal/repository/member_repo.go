package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"listhub_v1_202602/internal/model"
)

// ==================== 接口定义 ====================

// MemberRepository 工作区成员仓储（Membership Store）
// 供访问控制决策使用的读操作必须和随后的写操作放在同一事务里，
// 否则两个并发降级请求都会看到 owner 数 = 2 然后双双放行
type MemberRepository interface {
	// FindByID 按成员记录 ID 查找，限定在指定工作区内
	FindByID(ctx context.Context, workspaceID, memberID int64) (*model.WorkspaceMembership, error)
	FindByUser(ctx context.Context, workspaceID, userID int64) (*model.WorkspaceMembership, error)
	// FindPendingByEmail 仅查找未绑定用户的待邀请记录（邮箱不区分大小写）
	FindPendingByEmail(ctx context.Context, workspaceID int64, email string) (*model.WorkspaceMembership, error)
	List(ctx context.Context, workspaceID int64, page, pageSize int) ([]model.WorkspaceMembership, int64, error)

	CountActiveOwners(ctx context.Context, workspaceID int64) (int64, error)

	Create(ctx context.Context, membership *model.WorkspaceMembership) error
	// Upsert 按 (workspace_id, user_id) 冲突更新邀请信息
	Upsert(ctx context.Context, membership *model.WorkspaceMembership) error

	// UpdateRoleGuarded 带最后 owner 防护的角色更新
	// WHERE 子句内嵌实时 owner 计数，返回是否真正写入
	UpdateRoleGuarded(ctx context.Context, workspaceID, memberID int64, newRole model.WorkspaceRole) (bool, error)
	// DeleteGuarded 带最后 owner 防护的成员移除
	DeleteGuarded(ctx context.Context, workspaceID, memberID int64) (bool, error)

	// LockWorkspace 在事务内对工作区行加写锁，串行化同一工作区的成员变更
	// sqlite 单写者模型下无需也不支持 FOR UPDATE，此时为空操作
	LockWorkspace(ctx context.Context, workspaceID int64) error

	// ActivateByEmail 用户登录后激活所有匹配其邮箱的待邀请记录
	ActivateByEmail(ctx context.Context, userID int64, email string) (int64, error)
	// ListExpiredInvites 查找超过保留期仍未接受的邀请
	ListExpiredInvites(ctx context.Context, before time.Time) ([]model.WorkspaceMembership, error)
	DeleteByID(ctx context.Context, id int64) error
}

// ==================== 仓储实现 ====================

type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepository 创建成员仓储
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) FindByID(ctx context.Context, workspaceID, memberID int64) (*model.WorkspaceMembership, error) {
	var m model.WorkspaceMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("InvitedBy").
		Where("workspace_id = ? AND id = ?", workspaceID, memberID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &m, err
}

func (r *memberRepo) FindByUser(ctx context.Context, workspaceID, userID int64) (*model.WorkspaceMembership, error) {
	var m model.WorkspaceMembership
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &m, err
}

func (r *memberRepo) FindPendingByEmail(ctx context.Context, workspaceID int64, email string) (*model.WorkspaceMembership, error) {
	var m model.WorkspaceMembership
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id IS NULL AND LOWER(invited_email) = ?",
			workspaceID, strings.ToLower(email)).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &m, err
}

func (r *memberRepo) List(ctx context.Context, workspaceID int64, page, pageSize int) ([]model.WorkspaceMembership, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.WorkspaceMembership{}).
		Where("workspace_id = ?", workspaceID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var members []model.WorkspaceMembership
	err := query.
		Preload("User").
		Preload("InvitedBy").
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&members).Error

	return members, total, err
}

func (r *memberRepo) CountActiveOwners(ctx context.Context, workspaceID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WorkspaceMembership{}).
		Where("workspace_id = ? AND role = ? AND status = ?",
			workspaceID, model.RoleOwner, model.MemberStatusActive).
		Count(&count).Error
	return count, err
}

func (r *memberRepo) Create(ctx context.Context, membership *model.WorkspaceMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *memberRepo) Upsert(ctx context.Context, membership *model.WorkspaceMembership) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "workspace_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"role", "status", "invited_email", "invited_by_user_id", "updated_at",
			}),
		}).
		Create(membership).Error
}

// 最后 owner 防护的核心：owner 计数作为写语句 WHERE 的相关子查询，
// 和写入同一语句内求值。两个并发请求抢同一条 owner 记录时，
// 后提交的一方会在行锁释放后重新求值条件并得到 0 行
func (r *memberRepo) UpdateRoleGuarded(ctx context.Context, workspaceID, memberID int64, newRole model.WorkspaceRole) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.WorkspaceMembership{}).
		Where("id = ? AND workspace_id = ?", memberID, workspaceID).
		Where("role <> ? OR ? = ? OR (SELECT COUNT(*) FROM workspace_memberships o WHERE o.workspace_id = ? AND o.role = ? AND o.status = ?) > 1",
			model.RoleOwner, string(newRole), model.RoleOwner,
			workspaceID, model.RoleOwner, model.MemberStatusActive).
		Update("role", newRole)
	return res.RowsAffected > 0, res.Error
}

func (r *memberRepo) DeleteGuarded(ctx context.Context, workspaceID, memberID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", memberID, workspaceID).
		Where("role <> ? OR (SELECT COUNT(*) FROM workspace_memberships o WHERE o.workspace_id = ? AND o.role = ? AND o.status = ?) > 1",
			model.RoleOwner,
			workspaceID, model.RoleOwner, model.MemberStatusActive).
		Delete(&model.WorkspaceMembership{})
	return res.RowsAffected > 0, res.Error
}

func (r *memberRepo) LockWorkspace(ctx context.Context, workspaceID int64) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	var id int64
	return r.db.WithContext(ctx).
		Raw("SELECT id FROM workspaces WHERE id = ? FOR UPDATE", workspaceID).
		Scan(&id).Error
}

func (r *memberRepo) ActivateByEmail(ctx context.Context, userID int64, email string) (int64, error) {
	now := time.Now()
	var activated int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 未注册时收到的邀请：按邮箱匹配并绑定用户
		res := tx.Model(&model.WorkspaceMembership{}).
			Where("user_id IS NULL AND status = ? AND LOWER(invited_email) = ?",
				model.MemberStatusInvited, strings.ToLower(email)).
			Updates(map[string]interface{}{
				"user_id":       userID,
				"status":        model.MemberStatusActive,
				"joined_at":     now,
				"invited_email": "",
			})
		if res.Error != nil {
			return res.Error
		}
		activated += res.RowsAffected

		// 已注册用户收到的邀请：行上已绑定 user_id，只需激活
		res = tx.Model(&model.WorkspaceMembership{}).
			Where("user_id = ? AND status = ?", userID, model.MemberStatusInvited).
			Updates(map[string]interface{}{
				"status":    model.MemberStatusActive,
				"joined_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		activated += res.RowsAffected
		return nil
	})

	return activated, err
}

func (r *memberRepo) ListExpiredInvites(ctx context.Context, before time.Time) ([]model.WorkspaceMembership, error) {
	var members []model.WorkspaceMembership
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.MemberStatusInvited, before).
		Find(&members).Error
	return members, err
}

func (r *memberRepo) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.WorkspaceMembership{}, id).Error
}
