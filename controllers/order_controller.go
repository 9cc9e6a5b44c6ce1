package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventCreated is the history action recorded when an order is created
const EventCreated lifecycle.Action = "create"

func payloadError(err error) error {
	var perr *models.PayloadError
	if errors.As(err, &perr) {
		return &apiError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "INVALID_ORDER",
			Message: perr.Error(),
			Details: gin.H{"field": perr.Field},
		}
	}
	return err
}

// CreateOrder handles POST /api/v1/orders - creates a pending order
func CreateOrder(c *gin.Context) {
	var payload dto.OrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		validationError(c, err)
		return
	}

	order := models.ServiceOrder{Phase: lifecycle.PhasePending}
	if err := order.Fill(payload); err != nil {
		respondErr(c, payloadError(err), "Failed to create order")
		return
	}

	db := config.GetDB()
	actor := currentEmployee(c, db)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.PhaseEvent{
			OrderID: order.ID,
			Action:  EventCreated,
			ToPhase: lifecycle.PhasePending,
			ActorID: employeeID(actor),
		}).Error
	})
	if err != nil {
		respondErr(c, err, "Failed to create order")
		return
	}

	created, err := findOrder(db, order.ID, false)
	if err != nil {
		respondErr(c, err, "Failed to load created order")
		return
	}

	config.GetLogger().Info("order created", zap.Uint("order_id", order.ID), zap.String("modality", order.Modality))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    orderRecord(c, created),
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - replaces the content of an
// order that is neither completed nor refused
func UpdateOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	var payload dto.OrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		validationError(c, err)
		return
	}

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, id, true)
		if err != nil {
			return err
		}
		if order.IsLocked() {
			return newAPIError(http.StatusConflict, "ORDER_LOCKED", "Order "+string(order.Phase)+" can no longer be edited")
		}
		if err := order.Fill(payload); err != nil {
			return payloadError(err)
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderAccessory{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Items", "Accessories", "PickupPayments", "Attendant", "RefusalReason").Save(order).Error; err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = id
		}
		if err := tx.Create(&order.Items).Error; err != nil {
			return err
		}
		if len(order.Accessories) == 0 {
			return nil
		}
		for i := range order.Accessories {
			order.Accessories[i].OrderID = id
		}
		return tx.Create(&order.Accessories).Error
	})
	if err != nil {
		respondErr(c, err, "Failed to update order")
		return
	}

	updated, err := findOrder(db, id, false)
	if err != nil {
		respondErr(c, err, "Failed to load updated order")
		return
	}

	config.GetLogger().Info("order updated", zap.Uint("order_id", id))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderRecord(c, updated),
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := findOrder(config.GetDB(), id, false)
	if err != nil {
		respondErr(c, err, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderRecord(c, order),
	})
}

// ListOrders handles GET /api/v1/orders?phase=&overdue= - newest first.
// phase=OVERDUE is the same as overdue=true.
func ListOrders(c *gin.Context) {
	var filter dto.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		validationError(c, err)
		return
	}
	if filter.Phase == lifecycle.OverdueFilter {
		filter.Phase = ""
		filter.Overdue = true
	}
	if filter.Phase != "" && !lifecycle.Phase(filter.Phase).IsValid() {
		respondError(c, http.StatusBadRequest, lifecycle.CodeUnknownPhase, "Unknown phase: "+filter.Phase)
		return
	}

	query := preloadOrder(config.GetDB()).Order("id desc")
	if filter.Phase != "" {
		query = query.Where("phase = ?", filter.Phase)
	}
	if filter.Overdue {
		query = query.Where("phase IN ?", []lifecycle.Phase{lifecycle.PhaseAwaitingPickup, lifecycle.PhaseAwaitingReturn})
	}

	var orders []models.ServiceOrder
	if err := query.Find(&orders).Error; err != nil {
		respondErr(c, err, "Failed to fetch orders")
		return
	}

	now := Now()
	records := make([]dto.OrderRecord, 0, len(orders))
	for i := range orders {
		if filter.Overdue && !orders[i].IsOverdue(now) {
			continue
		}
		records = append(records, orderRecord(c, &orders[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
	})
}

// CountOrders handles GET /api/v1/orders/counts - the number of orders per
// phase plus OVERDUE
func CountOrders(c *gin.Context) {
	db := config.GetDB()

	var rows []struct {
		Phase string
		Count int64
	}
	if err := db.Model(&models.ServiceOrder{}).
		Select("phase, count(*) as count").
		Group("phase").
		Scan(&rows).Error; err != nil {
		respondErr(c, err, "Failed to count orders")
		return
	}

	counts := dto.PhaseCounts{lifecycle.OverdueFilter: 0}
	for _, p := range lifecycle.Phases {
		counts[string(p)] = 0
	}
	for _, r := range rows {
		counts[r.Phase] = r.Count
	}

	var due []models.ServiceOrder
	if err := db.Select("id", "phase", "pickup_date", "return_date").
		Where("phase IN ?", []lifecycle.Phase{lifecycle.PhaseAwaitingPickup, lifecycle.PhaseAwaitingReturn}).
		Find(&due).Error; err != nil {
		respondErr(c, err, "Failed to count orders")
		return
	}
	now := Now()
	for i := range due {
		if due[i].IsOverdue(now) {
			counts[lifecycle.OverdueFilter]++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    counts,
	})
}

func employeeID(e *models.Employee) *uint {
	if e == nil {
		return nil
	}
	id := e.ID
	return &id
}
