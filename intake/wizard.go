package intake

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrStepNotVisited = errors.New("step has not been visited yet")
	ErrNoPostalCode   = errors.New("postal code must have 8 digits before lookup")
	ErrNoAddressAPI   = errors.New("no address lookup configured")
)

// OrderStore is the remote side the wizard submits to
type OrderStore interface {
	CreateOrder(ctx context.Context, payload dto.OrderPayload) (uint, error)
	UpdateOrder(ctx context.Context, id uint, payload dto.OrderPayload) error
	GetOrder(ctx context.Context, id uint) (*dto.OrderRecord, error)
}

// AddressLookup resolves a postal code into address components
type AddressLookup interface {
	LookupPostalCode(ctx context.Context, postalCode string) (*dto.Address, error)
}

// SubmitError wraps a remote failure. The draft is left untouched so the
// operator can retry.
type SubmitError struct {
	Code    string
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Option configures a Wizard
type Option func(*Wizard)

// WithBalanceDebounce overrides DefaultBalanceDebounce
func WithBalanceDebounce(delay time.Duration) Option {
	return func(w *Wizard) { w.delay = delay }
}

// WithAddressLookup enables LookupPostalCode
func WithAddressLookup(a AddressLookup) Option {
	return func(w *Wizard) { w.addresses = a }
}

// WithBalanceListener is called with the new balance each time the debounced
// recomputation runs
func WithBalanceListener(fn func(decimal.Decimal)) Option {
	return func(w *Wizard) { w.onBalance = fn }
}

// WithLogger sets the logger, a no-op logger by default
func WithLogger(l *zap.Logger) Option {
	return func(w *Wizard) { w.log = l }
}

// Wizard walks an operator through the intake steps of one order. It owns
// the draft: callers read copies and write through Set and friends.
type Wizard struct {
	mu         sync.Mutex
	store      OrderStore
	addresses  AddressLookup
	onBalance  func(decimal.Decimal)
	log        *zap.Logger
	delay      time.Duration
	balance    *Debouncer
	draft      *Draft
	step       Step
	furthest   Step
	errors     ValidationErrors
	orderID    uint
	submitting bool
}

// NewWizard returns a wizard with an empty draft on the client step
func NewWizard(store OrderStore, opts ...Option) *Wizard {
	w := &Wizard{
		store: store,
		delay: DefaultBalanceDebounce,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.balance = NewDebouncer(w.delay, w.recomputeBalance)
	w.reset()
	return w
}

func (w *Wizard) reset() {
	w.draft = NewDraft()
	w.step = StepClient
	w.furthest = StepClient
	w.errors = ValidationErrors{}
	w.orderID = 0
}

func (w *Wizard) recomputeBalance() {
	w.mu.Lock()
	w.draft.RecomputeBalance()
	balance := w.draft.Payment.Balance
	w.mu.Unlock()

	if w.onBalance != nil {
		w.onBalance(balance)
	}
}

// Step returns the current step
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the current draft
func (w *Wizard) Draft() *Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

// Errors returns a copy of the errors currently surfaced
func (w *Wizard) Errors() ValidationErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errors.Clone()
}

// OrderID returns the id of the order being edited, 0 for a new order
func (w *Wizard) OrderID() uint {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.orderID
}

// Submitting reports whether a submission is in flight
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Get returns the rendered value of key
func (w *Wizard) Get(key FieldKey) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Get(w.draft, key)
}

// Set writes a raw value into the draft. Errors already surfaced are
// re-checked, so a field that became valid loses its message and switching a
// flag off drops the messages of the fields it gated.
func (w *Wizard) Set(key FieldKey, value string) error {
	return w.update(key, func(d *Draft) error { return Set(d, key, value) })
}

// TypeAmount writes raw keystrokes into a currency field, read as cents
func (w *Wizard) TypeAmount(key FieldKey, keystrokes string) error {
	return w.update(key, func(d *Draft) error { return SetKeystrokes(d, key, keystrokes) })
}

// Toggle switches an adjustment or accessory flag
func (w *Wizard) Toggle(flag FieldKey, on bool) error {
	if !flag.IsValid() || flag.Kind() != KindFlag {
		return fmt.Errorf("%s is not a flag", flag)
	}
	return w.Set(flag, strconv.FormatBool(on))
}

// SetSoldItems replaces the manual sold selection. Pieces not included in
// the order are rejected with ErrPieceNotIncluded.
func (w *Wizard) SetSoldItems(pieces ...Piece) error {
	return w.update(FieldSoldItems, func(d *Draft) error { return d.SetSoldItems(pieces) })
}

func (w *Wizard) update(key FieldKey, apply func(*Draft) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmitInFlight
	}
	if err := apply(w.draft); err != nil {
		return err
	}
	revalidate(w.errors, w.draft)
	if affectsBalance(key) {
		w.balance.Trigger()
	}
	return nil
}

// Next validates the current step and advances when it is clean. It returns
// false and surfaces the step's errors otherwise.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepPayment {
		w.settleBalance()
	}
	errs := ValidateStep(w.step, w.draft)
	if len(errs) > 0 {
		w.errors = errs
		return false
	}
	w.errors = ValidationErrors{}
	if int(w.step) < StepCount-1 {
		w.step++
	}
	if w.step > w.furthest {
		w.furthest = w.step
	}
	return true
}

// Prev moves back one step without validating
func (w *Wizard) Prev() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.errors = ValidationErrors{}
	if w.step > StepClient {
		w.step--
	}
}

// JumpTo moves to any step already reached
func (w *Wizard) JumpTo(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !step.IsValid() || step > w.furthest {
		return fmt.Errorf("%s: %w", step, ErrStepNotVisited)
	}
	w.step = step
	w.errors = ValidationErrors{}
	return nil
}

// settleBalance replaces a pending debounced run with an immediate one. The
// caller holds w.mu.
func (w *Wizard) settleBalance() {
	w.balance.Cancel()
	w.draft.RecomputeBalance()
}

// Submit validates every step and, when clean, creates the order or updates
// the one loaded for edit. On success the wizard starts over with an empty
// draft and the persisted order id is returned. Validation failures come back
// as ValidationErrors; remote failures as *SubmitError.
func (w *Wizard) Submit(ctx context.Context) (uint, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return 0, ErrSubmitInFlight
	}
	w.settleBalance()
	if errs := ValidateAll(w.draft); len(errs) > 0 {
		w.errors = errs
		w.mu.Unlock()
		return 0, errs.Clone()
	}
	w.errors = ValidationErrors{}
	payload := Assemble(w.draft)
	id := w.orderID
	w.submitting = true
	w.mu.Unlock()

	var err error
	if id == 0 {
		id, err = w.store.CreateOrder(ctx, payload)
	} else {
		err = w.store.UpdateOrder(ctx, id, payload)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		w.log.Warn("order submission failed", zap.Uint("order_id", id), zap.Error(err))
		return 0, &SubmitError{
			Code:    "SUBMIT_FAILED",
			Message: "Could not save the order, please try again",
			Err:     err,
		}
	}

	w.log.Info("order submitted", zap.Uint("order_id", id))
	w.reset()
	return id, nil
}

// LoadForEdit fetches a persisted order and replaces the draft with it. The
// wizard is bound to the order id, so the next Submit updates it.
func (w *Wizard) LoadForEdit(ctx context.Context, id uint) error {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	w.mu.Unlock()

	rec, err := w.store.GetOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load order %d: %w", id, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance.Cancel()
	w.reset()
	w.draft = RecoverDraft(rec)
	w.orderID = id
	w.furthest = StepPayment
	return nil
}

// Cancel discards the draft and any pending balance update
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.balance.Cancel()
	w.reset()
}

// LookupPostalCode fills the address from the postal code in the draft. Only
// empty address fields are filled, so manual edits survive a second lookup.
func (w *Wizard) LookupPostalCode(ctx context.Context) error {
	if w.addresses == nil {
		return ErrNoAddressAPI
	}

	w.mu.Lock()
	code := utils.OnlyDigits(w.draft.Client.Address.PostalCode)
	w.mu.Unlock()
	if len(code) != 8 {
		return ErrNoPostalCode
	}

	addr, err := w.addresses.LookupPostalCode(ctx, code)
	if err != nil {
		return fmt.Errorf("postal code lookup failed: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	a := &w.draft.Client.Address
	if utils.OnlyDigits(a.PostalCode) != code {
		// the operator changed the code while the lookup ran
		return nil
	}
	fillEmpty(&a.Street, addr.Street)
	fillEmpty(&a.Neighborhood, addr.Neighborhood)
	fillEmpty(&a.City, addr.City)
	fillEmpty(&a.State, addr.State)
	revalidate(w.errors, w.draft)
	return nil
}

func fillEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
