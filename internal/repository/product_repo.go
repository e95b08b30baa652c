package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"listhub_v1_202602/internal/model"
)

// ==================== 接口定义 ====================

// ProductFilter 商品筛选条件
type ProductFilter struct {
	Keyword  string // 匹配 SKU
	Status   string
	Page     int
	PageSize int
}

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	// GetByID 限定在指定工作区内查找
	GetByID(ctx context.Context, workspaceID, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, workspaceID, id int64) error
	List(ctx context.Context, workspaceID int64, filter ProductFilter) ([]model.Product, int64, error)

	AddImage(ctx context.Context, image *model.ProductImage) error
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, workspaceID, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Where("workspace_id = ?", workspaceID).
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, workspaceID, id int64) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Delete(&model.Product{}, id).Error
}

func (r *productRepo) List(ctx context.Context, workspaceID int64, filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("workspace_id = ?", workspaceID)

	if filter.Keyword != "" {
		query = query.Where("sku LIKE ?", "%"+filter.Keyword+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	var products []model.Product
	err := query.
		Preload("Images").
		Order("id DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) AddImage(ctx context.Context, image *model.ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}
