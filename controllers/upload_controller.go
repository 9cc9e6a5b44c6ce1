package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/services"
	"github.com/kendall-kelly/formalwear-orders-api/utils"
	"go.uber.org/zap"
)

// uploadDir is where locally stored photos live
func uploadDir() string {
	if cfg := config.GetConfig(); cfg != nil && cfg.UploadDir != "" {
		return cfg.UploadDir
	}
	return "./uploads"
}

// UploadOrderPhoto handles POST /api/v1/orders/:id/photo - stores the
// reference photo of an order, replacing the previous one
func UploadOrderPhoto(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Photo storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A photo file is required in the 'photo' field")
		return
	}

	db := config.GetDB()
	order, err := findOrder(db, id, false)
	if err != nil {
		respondErr(c, err, "Failed to fetch order")
		return
	}

	ctx := c.Request.Context()
	key, err := imageService.UploadImage(ctx, id, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		config.GetLogger().Error("photo upload failed", zap.Uint("order_id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store the photo")
		return
	}

	previous := order.ImageKey
	if err := db.Model(&models.ServiceOrder{}).Where("id = ?", id).Update("image_key", key).Error; err != nil {
		_ = imageService.DeleteImage(ctx, key)
		respondErr(c, err, "Failed to save photo reference")
		return
	}
	if previous != nil && *previous != "" {
		if err := imageService.DeleteImage(ctx, *previous); err != nil {
			config.GetLogger().Warn("failed to delete replaced photo", zap.String("key", *previous), zap.Error(err))
		}
	}
	order.ImageKey = &key

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderRecord(c, order),
	})
}

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves locally stored photos
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	if _, ok := utils.AllowedImageFormats[strings.ToLower(filepath.Ext(filename))]; !ok {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only PNG and JPEG files are supported")
		return
	}

	filePath := filepath.Join(uploadDir(), filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", utils.ContentType(filename))
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
