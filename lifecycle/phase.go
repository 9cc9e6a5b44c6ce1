package lifecycle

// Phase is the stored fulfillment stage of a service order
type Phase string

const (
	PhasePending        Phase = "PENDING"
	PhaseInProduction   Phase = "IN_PRODUCTION"
	PhaseAwaitingPickup Phase = "AWAITING_PICKUP"
	PhaseAwaitingReturn Phase = "AWAITING_RETURN"
	PhaseCompleted      Phase = "COMPLETED"
	PhaseRefused        Phase = "REFUSED"
)

// OverdueFilter is the pseudo-phase used by list filters and counts.
// It is never stored on an order.
const OverdueFilter = "OVERDUE"

// Phases lists every stored phase in board order
var Phases = []Phase{
	PhasePending,
	PhaseInProduction,
	PhaseAwaitingPickup,
	PhaseAwaitingReturn,
	PhaseCompleted,
	PhaseRefused,
}

// IsValid reports whether p is one of the stored phases
func (p Phase) IsValid() bool {
	switch p {
	case PhasePending, PhaseInProduction, PhaseAwaitingPickup,
		PhaseAwaitingReturn, PhaseCompleted, PhaseRefused:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the order can no longer be edited.
// REFUSED is terminal for editing even though it can be reopened.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseRefused
}

// CanBeOverdue reports whether the overdue overlay applies to p
func (p Phase) CanBeOverdue() bool {
	return p == PhaseAwaitingPickup || p == PhaseAwaitingReturn
}

func (p Phase) String() string {
	return string(p)
}

// ParsePhase converts a raw value into a Phase
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.IsValid() {
		return "", NewTransitionError(CodeUnknownPhase, "Unknown phase: "+s)
	}
	return p, nil
}
