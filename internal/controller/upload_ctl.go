package controller

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/service"
)

// 单张图片上限 10MB
const maxUploadSize = 10 << 20

type UploadController struct {
	storage        service.StorageProvider
	productService *service.ProductService
}

func NewUploadController(storage service.StorageProvider, productService *service.ProductService) *UploadController {
	return &UploadController{storage: storage, productService: productService}
}

// UploadProductImage
// @Summary 上传商品图片
// @Description multipart 上传，存入对象存储后挂到商品上
// @Tags Upload (上传模块)
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param workspaceId path int true "工作区ID"
// @Param productId path int true "商品ID"
// @Param file formData file true "图片文件"
// @Param sort_order formData int false "排序号"
// @Success 201 {object} model.ProductImage
// @Failure 422 {object} map[string]interface{} "文件缺失/过大"
// @Router /api/v1/workspaces/{workspaceId}/products/{productId}/images [post]
func (ctrl *UploadController) UploadProductImage(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		fail(c, http.StatusNotFound, "商品不存在")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, "缺少上传文件")
		return
	}
	if fileHeader.Size > maxUploadSize {
		fail(c, http.StatusUnprocessableEntity, "文件超过大小限制")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "读取文件失败: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, http.StatusInternalServerError, "读取文件失败: "+err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := ctrl.storage.Upload(c.Request.Context(), data, fileHeader.Filename, contentType)
	if err != nil {
		fail(c, http.StatusInternalServerError, "上传失败: "+err.Error())
		return
	}

	sortOrder, _ := strconv.Atoi(c.DefaultPostForm("sort_order", "0"))

	workspace := middleware.GetWorkspace(c)
	image, err := ctrl.productService.AttachImage(c.Request.Context(), workspace.ID, productID, url, sortOrder)
	if err != nil {
		// 商品不存在时清掉已落盘的对象，失败不影响响应
		_ = ctrl.storage.Delete(c.Request.Context(), url)
		handleDomainError(c, err)
		return
	}

	created(c, image)
}
