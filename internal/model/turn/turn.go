// Package turn defines the request/response types and the validated value
// types that flow through one turn of the agent pipeline.
package turn

import "time"

// Intent classifies a turn. It is set exactly once per turn, by the router.
type Intent string

const (
	IntentChat Intent = "chat"
	IntentRAG  Intent = "rag"
	IntentTool Intent = "tool"
)

// ParseIntent normalizes a free-text intent label. Anything unrecognized
// collapses to chat, matching the pipeline's fail-open routing policy.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentRAG:
		return IntentRAG
	case IntentTool:
		return IntentTool
	default:
		return IntentChat
	}
}

// Decision is the router's sanitized output. ToolName is either empty or a
// whitelisted operation name; it is never raw classifier text. ToolArgs is
// non-nil only when Intent is IntentTool.
type Decision struct {
	Intent   Intent
	ToolName string
	ToolArgs map[string]any
}

// ToolResult is the structured outcome of a tool execution. Faults are
// carried in-band via Success=false rather than raised.
type ToolResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Mock    bool           `json:"mock,omitempty"`
}

// Request is one chat turn request, shared by the blocking and streaming
// endpoints.
type Request struct {
	Message   string `json:"message" validate:"required,min=1,max=2000"`
	SessionID string `json:"session_id" validate:"required,min=1,max=100"`
	UserID    string `json:"user_id,omitempty" validate:"omitempty,max=100"`
}

// Response is the blocking endpoint's reply.
type Response struct {
	Message   string    `json:"message"`
	ToolUsed  string    `json:"tool_used,omitempty"`
	Cached    bool      `json:"cached"`
	Timestamp time.Time `json:"timestamp"`
}
