package coordinator

import (
	"errors"
	"fmt"

	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
)

var (
	ErrActionNotAllowed = errors.New("action is not available for the order's current phase")
	ErrInFlight         = errors.New("this action is already running for the order")
	ErrNotConfirmed     = errors.New("action was not confirmed")
	ErrModalClosed      = errors.New("the dialog for this order is no longer open")
	ErrNoAttendant      = errors.New("select an attendant")
	ErrNoReason         = errors.New("select a refusal reason")
	ErrUnknownAttendant = errors.New("selected attendant is not eligible")
	ErrUnknownReason    = errors.New("selected refusal reason is not available")
)

// CodeActionFailed is reported for every remote failure
const CodeActionFailed = "ACTION_FAILED"

// ActionError is the generic, retryable failure of a lifecycle call. The
// underlying cause is kept for logs and errors.Is, not for display.
type ActionError struct {
	Code    string
	Message string
	Action  lifecycle.Action
	OrderID uint
	Err     error
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func newActionError(action lifecycle.Action, orderID uint, err error) *ActionError {
	return &ActionError{
		Code:    CodeActionFailed,
		Message: fmt.Sprintf(failureMessages[action], orderID) + " Please try again.",
		Action:  action,
		OrderID: orderID,
		Err:     err,
	}
}

var failureMessages = map[lifecycle.Action]string{
	lifecycle.ActionAssign:          "Could not assign an attendant to order #%d.",
	lifecycle.ActionStartProduction: "Could not start production of order #%d.",
	lifecycle.ActionMarkReady:       "Could not mark order #%d as produced.",
	lifecycle.ActionPickup:          "Could not register the pickup of order #%d.",
	lifecycle.ActionMarkReturned:    "Could not mark order #%d as returned.",
	lifecycle.ActionRefuse:          "Could not refuse order #%d.",
	lifecycle.ActionReturnToPending: "Could not return order #%d to pending.",
}
