package model

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// 商品状态
const (
	ProductStatusDraft    = "draft"
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
)

// Product 工作区内的商品
type Product struct {
	BaseModel
	WorkspaceID int64 `gorm:"index;not null" json:"workspace_id"`

	SKU      string  `gorm:"size:100;index" json:"sku"`
	Price    float64 `gorm:"type:decimal(12,2)" json:"price"`
	Currency string  `gorm:"size:3;default:'USD'" json:"currency"`
	Quantity int     `gorm:"default:0" json:"quantity"`

	Status    string `gorm:"size:20;default:'draft';index" json:"status"`
	Condition string `gorm:"size:20" json:"condition"`

	// 标签（postgres text[]，sqlite 下退化为序列化文本）
	Tags pq.StringArray `gorm:"type:text[]" json:"tags"`

	// 平台映射等弱结构数据
	Metadata datatypes.JSON `json:"metadata"`

	// 关联对象
	Workspace *Workspace     `gorm:"foreignKey:WorkspaceID" json:"-"`
	Images    []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductImage 商品图片
type ProductImage struct {
	ID        int64  `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ProductID int64  `gorm:"index;not null" json:"product_id"`
	URL       string `gorm:"size:1024;not null" json:"url"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
