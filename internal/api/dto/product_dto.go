package dto

// ==================== 请求 ====================

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	SKU       string                 `json:"sku" binding:"required,max=100"`
	Price     float64                `json:"price" binding:"gte=0"`
	Currency  string                 `json:"currency" binding:"omitempty,len=3"`
	Quantity  int                    `json:"quantity" binding:"gte=0"`
	Status    string                 `json:"status" binding:"omitempty,oneof=draft active archived"`
	Condition string                 `json:"condition" binding:"omitempty,max=20"`
	Tags      []string               `json:"tags"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// UpdateProductRequest 更新商品请求（零值字段不更新）
type UpdateProductRequest struct {
	SKU       *string                `json:"sku" binding:"omitempty,max=100"`
	Price     *float64               `json:"price" binding:"omitempty,gte=0"`
	Currency  *string                `json:"currency" binding:"omitempty,len=3"`
	Quantity  *int                   `json:"quantity" binding:"omitempty,gte=0"`
	Status    *string                `json:"status" binding:"omitempty,oneof=draft active archived"`
	Condition *string                `json:"condition" binding:"omitempty,max=20"`
	Tags      []string               `json:"tags"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// ProductQuery 商品列表查询
type ProductQuery struct {
	Keyword  string `form:"keyword"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
