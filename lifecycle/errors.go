package lifecycle

import "fmt"

// Error codes, shared with the HTTP API error envelope
const (
	CodeUnknownPhase      = "UNKNOWN_PHASE"
	CodeUnknownAction     = "UNKNOWN_ACTION"
	CodeIllegalTransition = "INVALID_TRANSITION"
	CodeTerminalPhase     = "TERMINAL_PHASE"

	CodePaymentRequired    = "PAYMENT_REQUIRED"
	CodePaymentIncomplete  = "PAYMENT_INCOMPLETE"
	CodePaymentSumMismatch = "PAYMENT_SUM_MISMATCH"
	CodePaymentTooMany     = "PAYMENT_TOO_MANY_ROWS"
	CodePaymentAmount      = "PAYMENT_INVALID_AMOUNT"
	CodePaymentMethod      = "PAYMENT_INVALID_METHOD"
)

// Error messages for the lifecycle domain
const (
	ErrMsgIllegalTransition = "Action %q is not allowed for an order in phase %s"
	ErrMsgTerminalPhase     = "Action %q is not allowed: order is already in a terminal phase"

	ErrMsgPaymentRequired    = "Fill in at least one payment with amount and method"
	ErrMsgPaymentIncomplete  = "Payment %d is incomplete: both amount and method are required"
	ErrMsgPaymentSumMismatch = "Payments total %s but the outstanding balance is %s"
	ErrMsgPaymentTooMany     = "At most %d payments can be registered at pickup"
	ErrMsgPaymentAmount      = "Payment %d has an invalid amount"
	ErrMsgPaymentMethod      = "Payment %d has an unknown method %q"
)

// TransitionError is returned when an action is not legal for the order's phase
type TransitionError struct {
	Code    string
	Message string
}

func (e *TransitionError) Error() string {
	return e.Message
}

// NewTransitionError creates a TransitionError
func NewTransitionError(code, message string) *TransitionError {
	return &TransitionError{Code: code, Message: message}
}

// NewTransitionErrorf creates a TransitionError with a formatted message
func NewTransitionErrorf(code, format string, args ...interface{}) *TransitionError {
	return &TransitionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ReconciliationError is returned when pickup payments do not settle the balance.
// Row is the 1-based payment row at fault, 0 when the error concerns all rows.
type ReconciliationError struct {
	Code    string
	Message string
	Row     int
}

func (e *ReconciliationError) Error() string {
	return e.Message
}

func newReconciliationError(code string, row int, format string, args ...interface{}) *ReconciliationError {
	return &ReconciliationError{Code: code, Row: row, Message: fmt.Sprintf(format, args...)}
}
