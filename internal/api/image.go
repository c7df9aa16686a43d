package api

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
)

// ImageHandler uploads images ahead of a recipe save.
type ImageHandler struct {
	images service.IImageService
}

func NewImageHandler(images service.IImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.POST("/images", requireAuth, h.Upload)
}

// Upload stores every file of the "images" form field and returns their URLs
// in the order they were sent.
func (h *ImageHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		_ = c.Error(apperror.InvalidArgument("invalid multipart form: %v", err))
		return
	}
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["images"]...)
	headers = append(headers, form.File["image"]...)
	if len(headers) == 0 {
		_ = c.Error(apperror.InvalidArgument("no image files provided"))
		return
	}

	files, closeAll, err := openFiles(headers)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer closeAll()

	urls, err := h.images.UploadAll(c.Request.Context(), middleware.UserID(c), files)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"urls": urls})
}
