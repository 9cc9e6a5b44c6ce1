package lifecycle

// Action is an operator-triggered lifecycle operation
type Action string

const (
	ActionAssign          Action = "assign"
	ActionStartProduction Action = "start_production"
	ActionMarkReady       Action = "mark_ready"
	ActionPickup          Action = "pickup"
	ActionMarkReturned    Action = "mark_returned"
	ActionRefuse          Action = "refuse"
	ActionReturnToPending Action = "return_to_pending"
)

// Input names the data an action needs before it can fire
type Input string

const (
	InputNone           Input = ""
	InputAttendant      Input = "attendant"
	InputReconciliation Input = "reconciliation"
	InputRefusalReason  Input = "refusal_reason"
)

type transition struct {
	sources []Phase
	target  Phase
	input   Input
	confirm bool
}

// transitions is the complete legal transition table. Anything not listed is illegal.
var transitions = map[Action]transition{
	ActionAssign: {
		sources: []Phase{PhasePending},
		target:  PhasePending,
		input:   InputAttendant,
	},
	ActionStartProduction: {
		sources: []Phase{PhasePending},
		target:  PhaseInProduction,
	},
	ActionMarkReady: {
		sources: []Phase{PhaseInProduction},
		target:  PhaseAwaitingPickup,
	},
	ActionPickup: {
		sources: []Phase{PhaseAwaitingPickup},
		target:  PhaseAwaitingReturn,
		input:   InputReconciliation,
		confirm: true,
	},
	ActionMarkReturned: {
		sources: []Phase{PhaseAwaitingReturn},
		target:  PhaseCompleted,
		confirm: true,
	},
	ActionRefuse: {
		sources: []Phase{PhasePending, PhaseInProduction, PhaseAwaitingPickup},
		target:  PhaseRefused,
		input:   InputRefusalReason,
		confirm: true,
	},
	ActionReturnToPending: {
		sources: []Phase{PhaseRefused},
		target:  PhasePending,
	},
}

// actionOrder fixes the order in which actions are offered to the operator
var actionOrder = []Action{
	ActionAssign,
	ActionStartProduction,
	ActionMarkReady,
	ActionPickup,
	ActionMarkReturned,
	ActionRefuse,
	ActionReturnToPending,
}

// IsValid reports whether a is a known action
func (a Action) IsValid() bool {
	_, ok := transitions[a]
	return ok
}

// RequiresConfirmation reports whether the operator must confirm a before it is sent
func (a Action) RequiresConfirmation() bool {
	return transitions[a].confirm
}

// RequiredInput returns the input a needs, InputNone when it needs nothing
func (a Action) RequiredInput() Input {
	return transitions[a].input
}

func (a Action) String() string {
	return string(a)
}

// Next returns the phase an order in from reaches when a fires
func Next(from Phase, a Action) (Phase, error) {
	t, ok := transitions[a]
	if !ok {
		return "", NewTransitionError(CodeUnknownAction, "Unknown action: "+string(a))
	}
	if !from.IsValid() {
		return "", NewTransitionError(CodeUnknownPhase, "Unknown phase: "+string(from))
	}
	for _, src := range t.sources {
		if src == from {
			return t.target, nil
		}
	}
	if from == PhaseCompleted {
		return "", NewTransitionErrorf(CodeTerminalPhase, ErrMsgTerminalPhase, a)
	}
	return "", NewTransitionErrorf(CodeIllegalTransition, ErrMsgIllegalTransition, a, from)
}

// Can reports whether a is legal for an order in from
func Can(from Phase, a Action) bool {
	_, err := Next(from, a)
	return err == nil
}

// Actions lists the actions legal for an order in from
func Actions(from Phase) []Action {
	var out []Action
	for _, a := range actionOrder {
		if Can(from, a) {
			out = append(out, a)
		}
	}
	return out
}
