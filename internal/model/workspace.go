package model

// Workspace 工作区（租户容器）
// 产品、成员、审计日志都挂在工作区下
type Workspace struct {
	BaseModel
	Name string `gorm:"size:255;not null" json:"name"`
	Slug string `gorm:"size:120;uniqueIndex;not null" json:"slug"`

	CreatedByUserID int64 `gorm:"index" json:"created_by_user_id"`

	// 关联对象
	Creator     *User                 `gorm:"foreignKey:CreatedByUserID" json:"creator,omitempty"`
	Memberships []WorkspaceMembership `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Workspace) TableName() string {
	return "workspaces"
}
