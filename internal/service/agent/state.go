package agent

import "go.uber.org/zap"

// State is one node of the per-turn state machine.
type State int

const (
	StateStart State = iota
	StateRouted
	StateRetrieving
	StateToolRunning
	StateComposing
	StateDone
)

var stateNames = map[State]string{
	StateStart:       "start",
	StateRouted:      "routed",
	StateRetrieving:  "retrieving",
	StateToolRunning: "tool_running",
	StateComposing:   "composing",
	StateDone:        "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// stageLabels are the user-facing progress messages. States without a label
// never surface as status events.
var stageLabels = map[State]string{
	StateRouted:      "루미 생각 중...",
	StateRetrieving:  "정보 검색 중...",
	StateToolRunning: "도구 실행 중...",
	StateComposing:   "응답 작성 중...",
}

// transitions is the full reachability table. Every branch converges on
// StateComposing; StateComposing always moves to StateDone.
var transitions = map[State][]State{
	StateStart:       {StateRouted},
	StateRouted:      {StateRetrieving, StateToolRunning, StateComposing},
	StateRetrieving:  {StateComposing},
	StateToolRunning: {StateComposing},
	StateComposing:   {StateDone},
	StateDone:        {},
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// machine tracks the current state of one turn and which states it has
// visited, so each stage label is emitted at most once.
type machine struct {
	current State
	visited map[State]bool
	log     *zap.Logger
}

func newMachine(log *zap.Logger) *machine {
	return &machine{
		current: StateStart,
		visited: map[State]bool{StateStart: true},
		log:     log,
	}
}

// enter moves the machine to next and emits its stage label on first entry.
// An illegal transition is logged but not fatal; the pipeline must always
// reach user-visible output. Returns false only when emit reports the
// consumer is gone.
func (m *machine) enter(next State, emit func(Event) bool) bool {
	if !m.current.CanTransition(next) {
		m.log.Warn("illegal state transition",
			zap.Stringer("from", m.current), zap.Stringer("to", next))
	}
	m.current = next

	if m.visited[next] {
		return true
	}
	m.visited[next] = true

	label, ok := stageLabels[next]
	if !ok || emit == nil {
		return true
	}
	return emit(Event{Kind: EventStatus, Label: label})
}
