package service

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/repository"
)

// ==================== 错误定义 ====================

var ErrProductNotFound = errors.New("商品不存在")

// ==================== ProductService 商品服务 ====================

// ProductService 工作区商品 CRUD
// 写操作要求 products.write 权限，权限由控制器层的中间件校验，
// 这里只负责业务写入和审计
type ProductService struct {
	uow *repository.UnitOfWork
}

// NewProductService 创建商品服务
func NewProductService(uow *repository.UnitOfWork) *ProductService {
	return &ProductService{uow: uow}
}

// ==================== 查询 ====================

// List 分页查询工作区商品
func (s *ProductService) List(ctx context.Context, workspaceID int64, query *dto.ProductQuery) ([]model.Product, int64, error) {
	return s.uow.Products.List(ctx, workspaceID, repository.ProductFilter{
		Keyword:  query.Keyword,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
}

// Get 获取商品详情
func (s *ProductService) Get(ctx context.Context, workspaceID, productID int64) (*model.Product, error) {
	product, err := s.uow.Products.GetByID(ctx, workspaceID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ==================== 创建 ====================

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, workspaceID, actorUserID int64, req *dto.CreateProductRequest, rm RequestMeta) (*model.Product, error) {
	product := &model.Product{
		WorkspaceID: workspaceID,
		SKU:         req.SKU,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Condition:   req.Condition,
		Tags:        req.Tags,
	}
	if req.Currency != "" {
		product.Currency = req.Currency
	}
	if req.Status != "" {
		product.Status = req.Status
	}
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, err
		}
		product.Metadata = datatypes.JSON(raw)
	}

	err := s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		if err := uow.Products.Create(ctx, product); err != nil {
			return err
		}
		entry := newAuditLog(model.AuditProductCreated, &actorUserID, &workspaceID,
			"product", itoa(product.ID),
			map[string]interface{}{"sku": product.SKU}, rm)
		return uow.Audit.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// ==================== 更新 ====================

// Update 更新商品，nil 字段不变
func (s *ProductService) Update(ctx context.Context, workspaceID, actorUserID, productID int64, req *dto.UpdateProductRequest, rm RequestMeta) (*model.Product, error) {
	var product *model.Product

	err := s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		var err error
		product, err = uow.Products.GetByID(ctx, workspaceID, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		changes := map[string]interface{}{}
		if req.SKU != nil && *req.SKU != product.SKU {
			changes["sku"] = *req.SKU
			product.SKU = *req.SKU
		}
		if req.Price != nil && *req.Price != product.Price {
			changes["price"] = *req.Price
			product.Price = *req.Price
		}
		if req.Currency != nil && *req.Currency != product.Currency {
			changes["currency"] = *req.Currency
			product.Currency = *req.Currency
		}
		if req.Quantity != nil && *req.Quantity != product.Quantity {
			changes["quantity"] = *req.Quantity
			product.Quantity = *req.Quantity
		}
		if req.Status != nil && *req.Status != product.Status {
			changes["status"] = *req.Status
			product.Status = *req.Status
		}
		if req.Condition != nil && *req.Condition != product.Condition {
			changes["condition"] = *req.Condition
			product.Condition = *req.Condition
		}
		if req.Tags != nil {
			changes["tags"] = req.Tags
			product.Tags = req.Tags
		}
		if req.Metadata != nil {
			raw, err := json.Marshal(req.Metadata)
			if err != nil {
				return err
			}
			changes["metadata"] = req.Metadata
			product.Metadata = datatypes.JSON(raw)
		}
		if len(changes) == 0 {
			return nil
		}

		if err := uow.Products.Update(ctx, product); err != nil {
			return err
		}

		entry := newAuditLog(model.AuditProductUpdated, &actorUserID, &workspaceID,
			"product", itoa(productID), changes, rm)
		return uow.Audit.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// ==================== 删除 ====================

// Delete 删除商品（软删除）
func (s *ProductService) Delete(ctx context.Context, workspaceID, actorUserID, productID int64, rm RequestMeta) error {
	return s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		product, err := uow.Products.GetByID(ctx, workspaceID, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		if err := uow.Products.Delete(ctx, workspaceID, productID); err != nil {
			return err
		}

		entry := newAuditLog(model.AuditProductDeleted, &actorUserID, &workspaceID,
			"product", itoa(productID),
			map[string]interface{}{"sku": product.SKU}, rm)
		return uow.Audit.Create(ctx, entry)
	})
}

// ==================== 图片 ====================

// AttachImage 为商品追加一张已上传的图片
func (s *ProductService) AttachImage(ctx context.Context, workspaceID, productID int64, url string, sortOrder int) (*model.ProductImage, error) {
	product, err := s.uow.Products.GetByID(ctx, workspaceID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	image := &model.ProductImage{
		ProductID: productID,
		URL:       url,
		SortOrder: sortOrder,
	}
	if err := s.uow.Products.AddImage(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}
