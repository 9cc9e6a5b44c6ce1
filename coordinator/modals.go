package coordinator

import (
	"context"
	"fmt"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
	"github.com/kendall-kelly/formalwear-orders-api/money"
	"github.com/shopspring/decimal"
)

type modal interface {
	order() *dto.OrderRecord
}

// AssignModal holds the attendant selection for one order
type AssignModal struct {
	Order       *dto.OrderRecord
	Attendants  []dto.EmployeeSummary
	AttendantID uint
}

func (m *AssignModal) order() *dto.OrderRecord { return m.Order }

// PickupModal holds the payments collected when the client picks up the
// order. Collect is only meaningful when Balance is positive.
type PickupModal struct {
	Order    *dto.OrderRecord
	Balance  decimal.Decimal
	Collect  bool
	Payments []lifecycle.PaymentForm
}

func (m *PickupModal) order() *dto.OrderRecord { return m.Order }

// SetPayment fills payment row i, growing the list up to the allowed maximum
func (m *PickupModal) SetPayment(i int, amount string, method lifecycle.PaymentMethod) error {
	if i < 0 || i >= lifecycle.MaxPickupPayments {
		return fmt.Errorf("payment row %d out of range", i+1)
	}
	for len(m.Payments) <= i {
		m.Payments = append(m.Payments, lifecycle.PaymentForm{})
	}
	m.Payments[i] = lifecycle.PaymentForm{Amount: amount, Method: method}
	return nil
}

// RefuseModal holds the refusal reason and justification for one order
type RefuseModal struct {
	Order         *dto.OrderRecord
	Reasons       []dto.RefusalReason
	ReasonID      uint
	Justification string
}

func (m *RefuseModal) order() *dto.OrderRecord { return m.Order }

// OpenAssign opens the attendant dialog. The eligible attendants, active
// employees with the attendant or administrator role, are loaded now and not
// before.
func (c *Coordinator) OpenAssign(ctx context.Context, order *dto.OrderRecord) (*AssignModal, error) {
	if err := c.allowed(order, lifecycle.ActionAssign); err != nil {
		return nil, err
	}
	employees, err := c.directory.ListEmployees(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendants: %w", err)
	}

	m := &AssignModal{Order: order}
	for _, e := range employees {
		if e.CanAttend() {
			m.Attendants = append(m.Attendants, e)
		}
	}
	c.open(order.ID, m)
	return m, nil
}

// Assign submits the attendant selected in m. The dialog closes once the
// call returns, whatever its outcome.
func (c *Coordinator) Assign(ctx context.Context, m *AssignModal) (*dto.OrderRecord, error) {
	if err := c.current(m); err != nil {
		return nil, err
	}
	if m.AttendantID == 0 {
		return nil, ErrNoAttendant
	}
	eligible := false
	for _, a := range m.Attendants {
		eligible = eligible || a.ID == m.AttendantID
	}
	if !eligible {
		return nil, ErrUnknownAttendant
	}

	return c.runModal(ctx, m, lifecycle.ActionAssign, func(ctx context.Context) (*dto.OrderRecord, error) {
		return c.api.Assign(ctx, m.Order.ID, dto.AssignRequest{AttendantID: m.AttendantID})
	})
}

// OpenPickup opens the pickup dialog with the order's outstanding balance
func (c *Coordinator) OpenPickup(order *dto.OrderRecord) (*PickupModal, error) {
	if err := c.allowed(order, lifecycle.ActionPickup); err != nil {
		return nil, err
	}
	m := &PickupModal{Order: order, Balance: decimal.Zero}
	if order.Payment != nil {
		m.Balance = money.FromFloat(order.Payment.Balance)
	}
	c.open(order.ID, m)
	return m, nil
}

// PickUp reconciles the payments in m and registers the pickup. A
// reconciliation failure leaves the dialog open for correction and is
// returned as *lifecycle.ReconciliationError.
func (c *Coordinator) PickUp(ctx context.Context, m *PickupModal) (*dto.OrderRecord, error) {
	if err := c.current(m); err != nil {
		return nil, err
	}
	plan, err := lifecycle.PlanPickup(m.Balance, m.Collect, m.Payments)
	if err != nil {
		return nil, err
	}

	req := dto.PickupRequest{}
	if plan != nil {
		req.Reconciliation = &dto.Reconciliation{Total: money.Float(plan.Total)}
		for _, p := range plan.Payments {
			req.Reconciliation.Payments = append(req.Reconciliation.Payments, dto.PickupPayment{
				Method: string(p.Method),
				Amount: money.Float(p.Amount),
			})
		}
	}

	return c.runModal(ctx, m, lifecycle.ActionPickup, func(ctx context.Context) (*dto.OrderRecord, error) {
		return c.api.Pickup(ctx, m.Order.ID, req)
	})
}

// OpenRefuse opens the refusal dialog and loads the reason catalog
func (c *Coordinator) OpenRefuse(ctx context.Context, order *dto.OrderRecord) (*RefuseModal, error) {
	if err := c.allowed(order, lifecycle.ActionRefuse); err != nil {
		return nil, err
	}
	reasons, err := c.directory.ListRefusalReasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load refusal reasons: %w", err)
	}
	m := &RefuseModal{Order: order, Reasons: reasons}
	c.open(order.ID, m)
	return m, nil
}

// Refuse refuses the order with the reason selected in m
func (c *Coordinator) Refuse(ctx context.Context, m *RefuseModal) (*dto.OrderRecord, error) {
	if err := c.current(m); err != nil {
		return nil, err
	}
	if m.ReasonID == 0 {
		return nil, ErrNoReason
	}
	listed := false
	for _, r := range m.Reasons {
		listed = listed || r.ID == m.ReasonID
	}
	if !listed {
		return nil, ErrUnknownReason
	}

	req := dto.RefuseRequest{ReasonID: m.ReasonID, Justification: m.Justification}
	return c.runModal(ctx, m, lifecycle.ActionRefuse, func(ctx context.Context) (*dto.OrderRecord, error) {
		return c.api.Refuse(ctx, m.Order.ID, req)
	})
}

// CloseModal discards whatever dialog is open for the order
func (c *Coordinator) CloseModal(orderID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.modals, orderID)
}

// ModalOpen reports whether a dialog is open for the order
func (c *Coordinator) ModalOpen(orderID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.modals[orderID]
	return ok
}

func (c *Coordinator) open(orderID uint, m modal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modals[orderID] = m
}

func (c *Coordinator) current(m modal) error {
	o := m.order()
	if o == nil {
		return ErrModalClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modals[o.ID] != m {
		return ErrModalClosed
	}
	return nil
}

// runModal runs the action and closes the dialog once the API answered. A
// declined confirmation or a busy order keeps the dialog open.
func (c *Coordinator) runModal(ctx context.Context, m modal, action lifecycle.Action, call func(context.Context) (*dto.OrderRecord, error)) (*dto.OrderRecord, error) {
	called := false
	rec, err := c.run(ctx, m.order(), action, func(ctx context.Context) (*dto.OrderRecord, error) {
		called = true
		return call(ctx)
	})
	if called {
		c.closeIf(m)
	}
	return rec, err
}

func (c *Coordinator) closeIf(m modal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id := m.order().ID; c.modals[id] == m {
		delete(c.modals, id)
	}
}
