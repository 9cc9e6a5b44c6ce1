package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/money"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// prepareFunc applies the action's own changes to a locked order before its
// phase moves. The returned note goes into the phase history.
type prepareFunc func(tx *gorm.DB, order *models.ServiceOrder) (note string, err error)

// applyTransition moves order :id through action inside one transaction,
// records the phase event and answers with the updated order
func applyTransition(c *gin.Context, action lifecycle.Action, prepare prepareFunc) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	actor := currentEmployee(c, db)

	var from, to lifecycle.Phase
	err := db.Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, id, true)
		if err != nil {
			return err
		}

		from = order.Phase
		to, err = lifecycle.Next(order.Phase, action)
		if err != nil {
			var terr *lifecycle.TransitionError
			if errors.As(err, &terr) {
				return newAPIError(http.StatusConflict, terr.Code, terr.Message)
			}
			return err
		}

		note := ""
		if prepare != nil {
			if note, err = prepare(tx, order); err != nil {
				return err
			}
		}

		order.Phase = to
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return err
		}
		return tx.Create(&models.PhaseEvent{
			OrderID:   id,
			Action:    action,
			FromPhase: from,
			ToPhase:   to,
			Note:      note,
			ActorID:   employeeID(actor),
		}).Error
	})
	if err != nil {
		respondErr(c, err, "Failed to apply "+string(action))
		return
	}

	order, err := findOrder(db, id, false)
	if err != nil {
		respondErr(c, err, "Failed to load order")
		return
	}

	config.GetLogger().Info("order transition",
		zap.Uint("order_id", id),
		zap.String("action", string(action)),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Uintp("actor_id", employeeID(actor)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderRecord(c, order),
	})
}

// bindOptionalJSON binds the body into obj, accepting an empty body
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		validationError(c, err)
		return false
	}
	return true
}

// AssignAttendant handles POST /api/v1/orders/:id/assign
func AssignAttendant(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	applyTransition(c, lifecycle.ActionAssign, func(tx *gorm.DB, order *models.ServiceOrder) (string, error) {
		var attendant models.Employee
		if err := tx.First(&attendant, req.AttendantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", newAPIError(http.StatusUnprocessableEntity, "EMPLOYEE_NOT_FOUND", "Attendant not found")
			}
			return "", err
		}
		if !attendant.CanAttend() {
			return "", newAPIError(http.StatusUnprocessableEntity, "INVALID_ATTENDANT",
				"Only active attendants and administrators can be assigned to an order")
		}
		order.AttendantID = &attendant.ID
		order.Attendant = &attendant
		return "assigned to " + attendant.Name, nil
	})
}

// StartProduction handles POST /api/v1/orders/:id/start-production
func StartProduction(c *gin.Context) {
	applyTransition(c, lifecycle.ActionStartProduction, func(_ *gorm.DB, order *models.ServiceOrder) (string, error) {
		if order.AttendantID == nil {
			return "", newAPIError(http.StatusConflict, "ATTENDANT_REQUIRED",
				"Assign an attendant before starting production")
		}
		return "", nil
	})
}

// MarkReady handles POST /api/v1/orders/:id/ready
func MarkReady(c *gin.Context) {
	applyTransition(c, lifecycle.ActionMarkReady, nil)
}

// Pickup handles POST /api/v1/orders/:id/pickup. A reconciliation, when
// sent, must settle the stored balance exactly and is recorded as payments.
func Pickup(c *gin.Context) {
	var req dto.PickupRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	applyTransition(c, lifecycle.ActionPickup, func(tx *gorm.DB, order *models.ServiceOrder) (string, error) {
		if req.Reconciliation == nil {
			if order.Balance().IsPositive() {
				return "picked up with " + money.Format(order.Balance()) + " outstanding", nil
			}
			return "", nil
		}

		rows := make([]lifecycle.PaymentForm, 0, len(req.Reconciliation.Payments))
		for _, p := range req.Reconciliation.Payments {
			rows = append(rows, lifecycle.PaymentForm{
				Amount: money.Format(money.FromFloat(p.Amount)),
				Method: lifecycle.PaymentMethod(p.Method),
			})
		}
		rec, err := lifecycle.Reconcile(order.Balance(), rows)
		if err != nil {
			var rerr *lifecycle.ReconciliationError
			if errors.As(err, &rerr) {
				return "", &apiError{
					Status:  http.StatusUnprocessableEntity,
					Code:    rerr.Code,
					Message: rerr.Message,
					Details: gin.H{"row": rerr.Row},
				}
			}
			return "", err
		}

		payments := make([]models.PickupPayment, 0, len(rec.Payments))
		for _, p := range rec.Payments {
			payments = append(payments, models.PickupPayment{
				OrderID: order.ID,
				Method:  string(p.Method),
				Amount:  p.Amount,
			})
		}
		if err := tx.Create(&payments).Error; err != nil {
			return "", err
		}
		order.Paid = money.Round(order.Paid.Add(rec.Total))
		return fmt.Sprintf("collected %s in %d payment(s)", money.Format(rec.Total), len(payments)), nil
	})
}

// MarkReturned handles POST /api/v1/orders/:id/returned
func MarkReturned(c *gin.Context) {
	applyTransition(c, lifecycle.ActionMarkReturned, nil)
}

// RefuseOrder handles POST /api/v1/orders/:id/refuse
func RefuseOrder(c *gin.Context) {
	var req dto.RefuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	applyTransition(c, lifecycle.ActionRefuse, func(tx *gorm.DB, order *models.ServiceOrder) (string, error) {
		var reason models.RefusalReason
		err := tx.Where("id = ? AND active = ?", req.ReasonID, true).First(&reason).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", newAPIError(http.StatusUnprocessableEntity, "INVALID_REASON", "Refusal reason not found")
		}
		if err != nil {
			return "", err
		}
		order.RefusalReasonID = &reason.ID
		order.RefusalReason = &reason
		order.RefusalJustification = req.Justification
		return reason.Label, nil
	})
}

// ReopenOrder handles POST /api/v1/orders/:id/reopen - returns a refused
// order to pending. The refusal stays in the history only.
func ReopenOrder(c *gin.Context) {
	applyTransition(c, lifecycle.ActionReturnToPending, func(_ *gorm.DB, order *models.ServiceOrder) (string, error) {
		order.RefusalReasonID = nil
		order.RefusalReason = nil
		order.RefusalJustification = ""
		return "", nil
	})
}
