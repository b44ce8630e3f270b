package agent

// EventKind tags a stream event variant.
type EventKind int

const (
	// EventStatus announces first entry into a labeled pipeline state.
	EventStatus EventKind = iota
	// EventToken carries one fragment of generated answer text.
	EventToken
	// EventFinal closes the turn with the full answer.
	EventFinal
	// EventError reports a stream fault. It is always followed by EventDone.
	EventError
	// EventDone is the terminal event of every stream.
	EventDone
)

// Event is one entry in a turn's merged output stream.
//
// Ordering contract: the status event for a stage precedes every token
// produced by that stage's work; tokens appear in generation order; exactly
// one Final (carrying the concatenation of all tokens) precedes the terminal
// Done; a stream that faults carries one Error and still ends with Done.
type Event struct {
	Kind     EventKind
	Label    string // EventStatus: stage label
	Token    string // EventToken: generation fragment
	Text     string // EventFinal: full answer
	ToolUsed string // EventFinal: tool name when the turn ran a tool
	Err      string // EventError: fault description
}
