package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/models"
)

// GetOrderHistory handles GET /api/v1/orders/:id/history - the phase
// transitions of an order, oldest first
func GetOrderHistory(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var count int64
	if err := db.Model(&models.ServiceOrder{}).Where("id = ?", id).Count(&count).Error; err != nil {
		respondErr(c, err, "Failed to fetch order")
		return
	}
	if count == 0 {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}

	var events []models.PhaseEvent
	if err := db.Preload("Actor").
		Where("order_id = ?", id).
		Order("id asc").
		Find(&events).Error; err != nil {
		respondErr(c, err, "Failed to fetch order history")
		return
	}

	out := make([]dto.PhaseEvent, 0, len(events))
	for _, e := range events {
		out = append(out, e.DTO())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out,
	})
}
