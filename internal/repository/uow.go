package repository

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork 成员变更工作单元（事务）
// 成员的策略判定读、写入和审计落库必须是一个原子单元，
// 这里把相关仓库绑到同一个 *gorm.DB 上统一提交
type UnitOfWork struct {
	db         *gorm.DB
	Members    MemberRepository
	Users      UserRepository
	Workspaces WorkspaceRepository
	Products   ProductRepository
	Audit      AuditLogRepository
}

// NewUnitOfWork 创建工作单元
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		db:         db,
		Members:    NewMemberRepository(db),
		Users:      NewUserRepository(db),
		Workspaces: NewWorkspaceRepository(db),
		Products:   NewProductRepository(db),
		Audit:      NewAuditLogRepository(db),
	}
}

// Transaction 执行事务
func (u *UnitOfWork) Transaction(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &UnitOfWork{
			db:         tx,
			Members:    NewMemberRepository(tx),
			Users:      NewUserRepository(tx),
			Workspaces: NewWorkspaceRepository(tx),
			Products:   NewProductRepository(tx),
			Audit:      NewAuditLogRepository(tx),
		}
		return fn(txUow)
	})
}
