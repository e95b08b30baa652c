package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 通用基础字段（带软删除）
// 适用于 User / Workspace / Product 这类需要保留历史的实体
// WorkspaceMembership 不使用：成员移除是物理删除，软删除行会占住
// (workspace_id, user_id) 唯一索引，导致无法重新邀请
type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
