package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_LegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   Phase
		action Action
		want   Phase
	}{
		{"assign keeps pending", PhasePending, ActionAssign, PhasePending},
		{"start production", PhasePending, ActionStartProduction, PhaseInProduction},
		{"mark produced", PhaseInProduction, ActionMarkReady, PhaseAwaitingPickup},
		{"pick up", PhaseAwaitingPickup, ActionPickup, PhaseAwaitingReturn},
		{"mark returned", PhaseAwaitingReturn, ActionMarkReturned, PhaseCompleted},
		{"refuse pending", PhasePending, ActionRefuse, PhaseRefused},
		{"refuse in production", PhaseInProduction, ActionRefuse, PhaseRefused},
		{"refuse awaiting pickup", PhaseAwaitingPickup, ActionRefuse, PhaseRefused},
		{"return to pending", PhaseRefused, ActionReturnToPending, PhasePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     Phase
		action   Action
		wantCode string
	}{
		{"mark returned on pending", PhasePending, ActionMarkReturned, CodeIllegalTransition},
		{"pickup on in production", PhaseInProduction, ActionPickup, CodeIllegalTransition},
		{"refuse awaiting return", PhaseAwaitingReturn, ActionRefuse, CodeIllegalTransition},
		{"assign in production", PhaseInProduction, ActionAssign, CodeIllegalTransition},
		{"reopen pending", PhasePending, ActionReturnToPending, CodeIllegalTransition},
		{"refuse completed", PhaseCompleted, ActionRefuse, CodeTerminalPhase},
		{"reopen completed", PhaseCompleted, ActionReturnToPending, CodeTerminalPhase},
		{"unknown action", PhasePending, Action("teleport"), CodeUnknownAction},
		{"unknown phase", Phase("LOST"), ActionAssign, CodeUnknownPhase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Next(tt.from, tt.action)
			require.Error(t, err)

			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.wantCode, te.Code)
		})
	}
}

func TestNoBackwardTransitionsExceptReopen(t *testing.T) {
	rank := map[Phase]int{
		PhasePending:        0,
		PhaseInProduction:   1,
		PhaseAwaitingPickup: 2,
		PhaseAwaitingReturn: 3,
		PhaseCompleted:      4,
	}

	for _, from := range Phases {
		for _, a := range Actions(from) {
			to, err := Next(from, a)
			require.NoError(t, err)
			if a == ActionReturnToPending || to == PhaseRefused || from == PhaseRefused {
				continue
			}
			assert.GreaterOrEqual(t, rank[to], rank[from], "%s from %s goes backward", a, from)
		}
	}
}

func TestActions(t *testing.T) {
	assert.Equal(t, []Action{ActionAssign, ActionStartProduction, ActionRefuse}, Actions(PhasePending))
	assert.Equal(t, []Action{ActionMarkReady, ActionRefuse}, Actions(PhaseInProduction))
	assert.Equal(t, []Action{ActionPickup, ActionRefuse}, Actions(PhaseAwaitingPickup))
	assert.Equal(t, []Action{ActionMarkReturned}, Actions(PhaseAwaitingReturn))
	assert.Empty(t, Actions(PhaseCompleted))
	assert.Equal(t, []Action{ActionReturnToPending}, Actions(PhaseRefused))
}

func TestActionMetadata(t *testing.T) {
	assert.True(t, ActionRefuse.RequiresConfirmation())
	assert.True(t, ActionPickup.RequiresConfirmation())
	assert.True(t, ActionMarkReturned.RequiresConfirmation())
	assert.False(t, ActionAssign.RequiresConfirmation())
	assert.False(t, ActionMarkReady.RequiresConfirmation())

	assert.Equal(t, InputAttendant, ActionAssign.RequiredInput())
	assert.Equal(t, InputRefusalReason, ActionRefuse.RequiredInput())
	assert.Equal(t, InputReconciliation, ActionPickup.RequiredInput())
	assert.Equal(t, InputNone, ActionMarkReturned.RequiredInput())
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("AWAITING_RETURN")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingReturn, p)

	_, err = ParsePhase(OverdueFilter)
	assert.Error(t, err, "OVERDUE is an overlay, not a stored phase")
}
