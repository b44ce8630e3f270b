package agent

import (
	"testing"

	"go.uber.org/zap"
)

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateStart, StateRouted},
		{StateRouted, StateRetrieving},
		{StateRouted, StateToolRunning},
		{StateRouted, StateComposing},
		{StateRetrieving, StateComposing},
		{StateToolRunning, StateComposing},
		{StateComposing, StateDone},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s to be legal", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to State }{
		{StateStart, StateComposing},
		{StateRetrieving, StateToolRunning},
		{StateToolRunning, StateRetrieving},
		{StateComposing, StateRouted},
		{StateDone, StateRouted},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s to be illegal", tc.from, tc.to)
		}
	}
}

func TestMachineEmitsStageLabelOncePerState(t *testing.T) {
	m := newMachine(zap.NewNop())

	var emitted []string
	emit := func(ev Event) bool {
		emitted = append(emitted, ev.Label)
		return true
	}

	m.enter(StateRouted, emit)
	m.enter(StateComposing, emit)
	// Re-entry must not re-emit.
	m.enter(StateComposing, emit)

	if len(emitted) != 2 {
		t.Fatalf("expected 2 stage events, got %d: %v", len(emitted), emitted)
	}
	if emitted[0] != stageLabels[StateRouted] || emitted[1] != stageLabels[StateComposing] {
		t.Fatalf("unexpected labels: %v", emitted)
	}
}

func TestMachineDoneHasNoLabel(t *testing.T) {
	m := newMachine(zap.NewNop())
	m.enter(StateRouted, func(Event) bool { return true })
	m.enter(StateComposing, func(Event) bool { return true })

	m.enter(StateDone, func(Event) bool {
		t.Fatal("done must not emit a stage event")
		return true
	})
}
