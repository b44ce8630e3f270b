package chat

import "github.com/luminari-dev/lumi-agent/internal/service/agent"

// wireEvent is the serialized form shared by the SSE and WebSocket streams.
// Absent fields are omitted so each event type carries only what it needs.
type wireEvent struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	ToolUsed string `json:"tool_used,omitempty"`
	Error    string `json:"error,omitempty"`
}

func toWire(ev agent.Event) wireEvent {
	switch ev.Kind {
	case agent.EventStatus:
		return wireEvent{Type: "thinking", Content: ev.Label}
	case agent.EventToken:
		return wireEvent{Type: "token", Content: ev.Token}
	case agent.EventFinal:
		return wireEvent{Type: "response", Content: ev.Text, ToolUsed: ev.ToolUsed}
	case agent.EventError:
		return wireEvent{Type: "error", Error: ev.Err}
	default:
		return wireEvent{Type: "done"}
	}
}
