package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/services"
	"go.uber.org/zap"
)

// ListRefusalReasons handles GET /api/v1/refusal-reasons - the active catalog
func ListRefusalReasons(c *gin.Context) {
	var reasons []models.RefusalReason
	if err := config.GetDB().Where("active = ?", true).Order("id").Find(&reasons).Error; err != nil {
		respondErr(c, err, "Failed to fetch refusal reasons")
		return
	}

	out := make([]dto.RefusalReason, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, r.DTO())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out,
	})
}

// LookupAddress handles GET /api/v1/addresses/:postal_code
func LookupAddress(c *gin.Context) {
	svc := services.GetPostalCodeService()
	if svc == nil {
		respondError(c, http.StatusServiceUnavailable, "ADDRESS_LOOKUP_UNAVAILABLE", "Postal code lookup is not configured")
		return
	}

	addr, err := svc.LookupPostalCode(c.Request.Context(), c.Param("postal_code"))
	switch {
	case errors.Is(err, services.ErrInvalidPostalCode):
		respondError(c, http.StatusBadRequest, "INVALID_POSTAL_CODE", "Postal code must have 8 digits")
		return
	case errors.Is(err, services.ErrPostalCodeNotFound):
		respondError(c, http.StatusNotFound, "POSTAL_CODE_NOT_FOUND", "Postal code not found")
		return
	case err != nil:
		config.GetLogger().Warn("postal code lookup failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "ADDRESS_LOOKUP_FAILED", "Postal code lookup failed, please try again")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    addr,
	})
}
