package lifecycle

import (
	"strings"

	"github.com/kendall-kelly/formalwear-orders-api/money"
	"github.com/shopspring/decimal"
)

// MaxPickupPayments is the number of payment rows the pickup form offers
const MaxPickupPayments = 2

// PaymentMethod is how a pickup payment was made
type PaymentMethod string

const (
	MethodPix    PaymentMethod = "pix"
	MethodCredit PaymentMethod = "credit"
	MethodDebit  PaymentMethod = "debit"
	MethodCash   PaymentMethod = "cash"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodPix, MethodCredit, MethodDebit, MethodCash:
		return true
	default:
		return false
	}
}

// PaymentForm is one row of the pickup payment form, as typed by the operator
type PaymentForm struct {
	Amount string
	Method PaymentMethod
}

func (f PaymentForm) hasAmount() bool {
	return strings.TrimSpace(f.Amount) != ""
}

func (f PaymentForm) hasMethod() bool {
	return strings.TrimSpace(string(f.Method)) != ""
}

// IsBlank reports whether neither field of the row was filled in
func (f PaymentForm) IsBlank() bool {
	return !f.hasAmount() && !f.hasMethod()
}

// ReconciledPayment is a validated pickup payment
type ReconciledPayment struct {
	Method PaymentMethod
	Amount decimal.Decimal
}

// Reconciliation is the validated payment set that settles the balance at pickup
type Reconciliation struct {
	Payments []ReconciledPayment
	Total    decimal.Decimal
}

// Reconcile validates pickup payment rows against the outstanding balance.
//
// Half-filled rows are reported first, then the absence of any complete row,
// then per-row amount and method problems, then a sum that does not settle
// the balance.
func Reconcile(balance decimal.Decimal, rows []PaymentForm) (*Reconciliation, error) {
	if len(rows) > MaxPickupPayments {
		return nil, newReconciliationError(CodePaymentTooMany, 0, ErrMsgPaymentTooMany, MaxPickupPayments)
	}

	complete := 0
	for i, row := range rows {
		if row.IsBlank() {
			continue
		}
		if !row.hasAmount() || !row.hasMethod() {
			return nil, newReconciliationError(CodePaymentIncomplete, i+1, ErrMsgPaymentIncomplete, i+1)
		}
		complete++
	}
	if complete == 0 {
		return nil, newReconciliationError(CodePaymentRequired, 0, ErrMsgPaymentRequired)
	}

	rec := &Reconciliation{Total: decimal.Zero}
	for i, row := range rows {
		if row.IsBlank() {
			continue
		}
		amount, err := money.Parse(row.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, newReconciliationError(CodePaymentAmount, i+1, ErrMsgPaymentAmount, i+1)
		}
		method := PaymentMethod(strings.ToLower(strings.TrimSpace(string(row.Method))))
		if !method.IsValid() {
			return nil, newReconciliationError(CodePaymentMethod, i+1, ErrMsgPaymentMethod, i+1, row.Method)
		}
		rec.Payments = append(rec.Payments, ReconciledPayment{Method: method, Amount: amount})
		rec.Total = rec.Total.Add(amount)
	}

	balance = money.Round(balance)
	if !money.Equal(rec.Total, balance) {
		return nil, newReconciliationError(CodePaymentSumMismatch, 0, ErrMsgPaymentSumMismatch,
			money.Format(rec.Total), money.Format(balance))
	}
	return rec, nil
}

// PlanPickup decides what accompanies the pickup call. Nothing is collected when the
// balance is settled or the operator chose not to collect now.
func PlanPickup(balance decimal.Decimal, collect bool, rows []PaymentForm) (*Reconciliation, error) {
	if !balance.IsPositive() || !collect {
		return nil, nil
	}
	return Reconcile(balance, rows)
}
