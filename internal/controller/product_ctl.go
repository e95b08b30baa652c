package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/service"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(s *service.ProductService) *ProductController {
	return &ProductController{productService: s}
}

// List
// @Summary 工作区商品列表
// @Tags Product (商品模块)
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param keyword query string false "SKU 搜索"
// @Param status query string false "状态筛选 draft/active/archived"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.PageResult
// @Router /api/v1/workspaces/{workspaceId}/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	var query dto.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	workspace := middleware.GetWorkspace(c)
	products, total, err := ctrl.productService.List(c.Request.Context(), workspace.ID, &query)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, dto.PageResult{List: products, Total: total, Page: query.Page, PageSize: query.PageSize})
}

// Get
// @Summary 商品详情
// @Tags Product (商品模块)
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param productId path int true "商品ID"
// @Success 200 {object} model.Product
// @Router /api/v1/workspaces/{workspaceId}/products/{productId} [get]
func (ctrl *ProductController) Get(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		fail(c, http.StatusNotFound, "商品不存在")
		return
	}

	workspace := middleware.GetWorkspace(c)
	product, err := ctrl.productService.Get(c.Request.Context(), workspace.ID, productID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, product)
}

// Create
// @Summary 创建商品
// @Tags Product (商品模块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param body body dto.CreateProductRequest true "商品信息"
// @Success 201 {object} model.Product
// @Failure 403 {object} map[string]interface{} "无 products.write 权限"
// @Router /api/v1/workspaces/{workspaceId}/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	workspace := middleware.GetWorkspace(c)
	product, err := ctrl.productService.Create(c.Request.Context(),
		workspace.ID, middleware.GetUserID(c), &req, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	created(c, product)
}

// Update
// @Summary 更新商品
// @Tags Product (商品模块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param productId path int true "商品ID"
// @Param body body dto.UpdateProductRequest true "更新内容"
// @Success 200 {object} model.Product
// @Router /api/v1/workspaces/{workspaceId}/products/{productId} [put]
func (ctrl *ProductController) Update(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		fail(c, http.StatusNotFound, "商品不存在")
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "参数错误: "+err.Error())
		return
	}

	workspace := middleware.GetWorkspace(c)
	product, err := ctrl.productService.Update(c.Request.Context(),
		workspace.ID, middleware.GetUserID(c), productID, &req, requestMeta(c))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, product)
}

// Delete
// @Summary 删除商品
// @Tags Product (商品模块)
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param productId path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/workspaces/{workspaceId}/products/{productId} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		fail(c, http.StatusNotFound, "商品不存在")
		return
	}

	workspace := middleware.GetWorkspace(c)
	if err := ctrl.productService.Delete(c.Request.Context(),
		workspace.ID, middleware.GetUserID(c), productID, requestMeta(c)); err != nil {
		handleDomainError(c, err)
		return
	}

	ok(c, nil)
}
