package dto

import "time"

// AssignRequest is the body of the assign attendant call
type AssignRequest struct {
	AttendantID uint `json:"attendant_id" binding:"required"`
}

// PickupPayment is one reconciled payment collected at pickup
type PickupPayment struct {
	Method string  `json:"method" binding:"required"`
	Amount float64 `json:"amount" binding:"gt=0"`
}

// Reconciliation settles the outstanding balance at pickup
type Reconciliation struct {
	Payments []PickupPayment `json:"payments" binding:"required,min=1,max=2,dive"`
	Total    float64         `json:"total"`
}

// PickupRequest is the body of the pickup call. A nil Reconciliation means
// nothing is collected now.
type PickupRequest struct {
	Reconciliation *Reconciliation `json:"reconciliation,omitempty"`
}

// RefuseRequest is the body of the refuse call
type RefuseRequest struct {
	ReasonID      uint   `json:"reason_id" binding:"required"`
	Justification string `json:"justification"`
}

// RefusalReason is an entry of the refusal reason catalog
type RefusalReason struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

// Employee roles
const (
	RoleAdministrator = "administrator"
	RoleAttendant     = "attendant"
	RoleSeamstress    = "seamstress"
)

// EmployeeSummary identifies an employee in lookups and read-back
type EmployeeSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// CanAttend reports whether the employee may be assigned to an order
func (e EmployeeSummary) CanAttend() bool {
	return e.Active && (e.Role == RoleAttendant || e.Role == RoleAdministrator)
}

// Address is the result of a postal code lookup
type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// PhaseEvent is one entry of an order's lifecycle history
type PhaseEvent struct {
	ID        uint             `json:"id"`
	Action    string           `json:"action"`
	FromPhase string           `json:"from_phase"`
	ToPhase   string           `json:"to_phase"`
	Note      string           `json:"note,omitempty"`
	Actor     *EmployeeSummary `json:"actor,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
