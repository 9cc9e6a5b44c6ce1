// Package coordinator drives the lifecycle actions an operator triggers on an
// existing order. Every action is checked against the order's phase before
// anything is sent, destructive ones are confirmed first, and a successful
// call is followed by a refresh of the order board.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
	"go.uber.org/zap"
)

// LifecycleAPI performs transitions on the order-management API. Each call
// returns the order as persisted after the transition.
type LifecycleAPI interface {
	Assign(ctx context.Context, orderID uint, req dto.AssignRequest) (*dto.OrderRecord, error)
	StartProduction(ctx context.Context, orderID uint) (*dto.OrderRecord, error)
	MarkReady(ctx context.Context, orderID uint) (*dto.OrderRecord, error)
	Pickup(ctx context.Context, orderID uint, req dto.PickupRequest) (*dto.OrderRecord, error)
	MarkReturned(ctx context.Context, orderID uint) (*dto.OrderRecord, error)
	Refuse(ctx context.Context, orderID uint, req dto.RefuseRequest) (*dto.OrderRecord, error)
	ReturnToPending(ctx context.Context, orderID uint) (*dto.OrderRecord, error)
}

// Directory serves the lookups the dialogs need
type Directory interface {
	ListEmployees(ctx context.Context, activeOnly bool) ([]dto.EmployeeSummary, error)
	ListRefusalReasons(ctx context.Context) ([]dto.RefusalReason, error)
}

// Confirmer asks the operator to approve an irreversible action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Refresher reloads whatever view depends on order phases
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AlwaysConfirm approves every prompt
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

type flightKey struct {
	orderID uint
	action  lifecycle.Action
}

// Coordinator runs lifecycle actions for many orders. State is kept per
// order: nothing one order does affects another.
type Coordinator struct {
	api       LifecycleAPI
	directory Directory
	confirm   Confirmer
	refresher Refresher
	log       *zap.Logger

	mu       sync.Mutex
	inFlight map[flightKey]bool
	modals   map[uint]modal
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithRefresher refreshes r after every successful action
func WithRefresher(r Refresher) Option {
	return func(c *Coordinator) { c.refresher = r }
}

// WithLogger sets the logger, a no-op logger by default
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// New returns a coordinator. A nil confirmer approves everything.
func New(api LifecycleAPI, directory Directory, confirm Confirmer, opts ...Option) *Coordinator {
	if confirm == nil {
		confirm = AlwaysConfirm{}
	}
	c := &Coordinator{
		api:       api,
		directory: directory,
		confirm:   confirm,
		log:       zap.NewNop(),
		inFlight:  make(map[flightKey]bool),
		modals:    make(map[uint]modal),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AvailableActions lists what the operator may do with order right now
func (c *Coordinator) AvailableActions(order *dto.OrderRecord) []lifecycle.Action {
	return lifecycle.Actions(lifecycle.Phase(order.Phase))
}

// StartProduction moves a pending order into production
func (c *Coordinator) StartProduction(ctx context.Context, order *dto.OrderRecord) (*dto.OrderRecord, error) {
	return c.run(ctx, order, lifecycle.ActionStartProduction, func(ctx context.Context) (*dto.OrderRecord, error) {
		return c.api.StartProduction(ctx, order.ID)
	})
}

// MarkProduced flags an order in production as ready for pickup
func (c *Coordinator) MarkProduced(ctx context.Context, order *dto.OrderRecord) (*dto.OrderRecord, error) {
	return c.run(ctx, order, lifecycle.ActionMarkReady, func(ctx context.Context) (*dto.OrderRecord, error) {
		return c.api.MarkReady(ctx, order.ID)
	})
}

// MarkReturned completes an order after its garments came back
func (c *Coordinator) MarkReturned(ctx context.Context, order *dto.OrderRecord) (*dto.OrderRecord, error) {
	return c.run(ctx, order, lifecycle.ActionMarkReturned, func(ctx context.Context) (*dto.OrderRecord, error) {
		return c.api.MarkReturned(ctx, order.ID)
	})
}

// ReturnToPending reopens a refused order
func (c *Coordinator) ReturnToPending(ctx context.Context, order *dto.OrderRecord) (*dto.OrderRecord, error) {
	return c.run(ctx, order, lifecycle.ActionReturnToPending, func(ctx context.Context) (*dto.OrderRecord, error) {
		return c.api.ReturnToPending(ctx, order.ID)
	})
}

// run is the shared path of every action: phase check, in-flight guard,
// confirmation, the call itself and the refresh that follows success.
func (c *Coordinator) run(ctx context.Context, order *dto.OrderRecord, action lifecycle.Action, call func(context.Context) (*dto.OrderRecord, error)) (*dto.OrderRecord, error) {
	if err := c.allowed(order, action); err != nil {
		return nil, err
	}

	key := flightKey{orderID: order.ID, action: action}
	c.mu.Lock()
	if c.inFlight[key] {
		c.mu.Unlock()
		return nil, ErrInFlight
	}
	c.inFlight[key] = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}()

	if action.RequiresConfirmation() {
		ok, err := c.confirm.Confirm(ctx, prompts(action, order.ID))
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return nil, ErrNotConfirmed
		}
	}

	updated, err := call(ctx)
	if err != nil {
		c.log.Warn("lifecycle action failed",
			zap.Uint("order_id", order.ID),
			zap.String("action", action.String()),
			zap.Error(err))
		return nil, newActionError(action, order.ID, err)
	}

	c.log.Info("lifecycle action applied",
		zap.Uint("order_id", order.ID),
		zap.String("action", action.String()),
		zap.String("from", order.Phase),
		zap.String("to", phaseOf(updated)))

	c.refresh(ctx)
	return updated, nil
}

func (c *Coordinator) allowed(order *dto.OrderRecord, action lifecycle.Action) error {
	if order == nil {
		return ErrActionNotAllowed
	}
	if !lifecycle.Can(lifecycle.Phase(order.Phase), action) {
		return fmt.Errorf("%s on %s: %w", action, order.Phase, ErrActionNotAllowed)
	}
	return nil
}

// refresh waits for the board to reload. A failed refresh is logged and
// never turns a successful transition into a failure.
func (c *Coordinator) refresh(ctx context.Context) {
	if c.refresher == nil {
		return
	}
	if err := c.refresher.Refresh(ctx); err != nil {
		c.log.Warn("board refresh failed after transition", zap.Error(err))
	}
}

// InFlight reports whether action is running for the order
func (c *Coordinator) InFlight(orderID uint, action lifecycle.Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[flightKey{orderID: orderID, action: action}]
}

func phaseOf(rec *dto.OrderRecord) string {
	if rec == nil {
		return ""
	}
	return rec.Phase
}

func prompts(action lifecycle.Action, orderID uint) string {
	switch action {
	case lifecycle.ActionPickup:
		return fmt.Sprintf("Confirm that the client picked up order #%d?", orderID)
	case lifecycle.ActionMarkReturned:
		return fmt.Sprintf("Confirm that every piece of order #%d was returned?", orderID)
	case lifecycle.ActionRefuse:
		return fmt.Sprintf("Refuse order #%d?", orderID)
	default:
		return fmt.Sprintf("Apply %s to order #%d?", action, orderID)
	}
}
