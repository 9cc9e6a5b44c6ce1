package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/middleware"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Now is the clock used for the overdue overlay
var Now = time.Now

// apiError is a handler failure rendered with the error envelope
type apiError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
}

func (e *apiError) Error() string {
	return e.Message
}

func newAPIError(status int, code, message string) *apiError {
	return &apiError{Status: status, Code: code, Message: message}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondErr renders err, falling back to a 500 DATABASE_ERROR for anything
// that is not an apiError
func respondErr(c *gin.Context, err error, fallback string) {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		config.GetLogger().Error(fallback, zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", fallback)
		return
	}

	body := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.JSON(apiErr.Status, gin.H{"success": false, "error": body})
}

// validationError renders a binding failure. Details is always an object,
// here {"validation": "<binder message>"}.
func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": gin.H{"validation": err.Error()},
		},
	})
}

// parseOrderID reads the :id parameter, answering 400 when it is not a
// positive integer
func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ORDER_ID", "Order ID must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// preloadOrder loads everything ToRecord renders
func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Preload("Accessories", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Preload("PickupPayments", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Attendant").
		Preload("RefusalReason")
}

// findOrder loads order id with its associations. lock takes a row lock on
// databases that support it.
func findOrder(db *gorm.DB, id uint, lock bool) (*models.ServiceOrder, error) {
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.ServiceOrder
	if err := preloadOrder(db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newAPIError(http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	return &order, nil
}

// orderRecord renders order with its photo URL
func orderRecord(c *gin.Context, order *models.ServiceOrder) dto.OrderRecord {
	rec := order.ToRecord(Now())
	if order.ImageKey == nil || *order.ImageKey == "" {
		return rec
	}
	imageService := services.GetImageService()
	if imageService == nil {
		return rec
	}
	url, err := imageService.GetImageURL(c.Request.Context(), *order.ImageKey)
	if err != nil {
		config.GetLogger().Warn("failed to build photo URL", zap.Uint("order_id", order.ID), zap.Error(err))
		return rec
	}
	rec.ImageURL = url
	return rec
}

// currentEmployee returns the employee profile of the caller, nil when the
// caller has not registered one
func currentEmployee(c *gin.Context, db *gorm.DB) *models.Employee {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		return nil
	}
	var employee models.Employee
	if err := db.Where("auth0_id = ?", auth0ID).First(&employee).Error; err != nil {
		return nil
	}
	return &employee
}
