package compose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/luminari-dev/lumi-agent/internal/model/chat"
	"github.com/luminari-dev/lumi-agent/internal/model/turn"
)

// historyLimit bounds how many prior messages accompany a turn.
const historyLimit = 6

// Input carries everything the composer needs for one turn. History holds
// prior messages only; the current user message travels in Query and must
// never be duplicated into the history block.
type Input struct {
	Intent     turn.Intent
	Query      string
	History    []chat.Message
	Docs       []string
	ToolName   string
	ToolResult *turn.ToolResult
}

// contextBuilders dispatches system-prompt assembly on the intent tag.
var contextBuilders = map[turn.Intent]func(Input) string{
	turn.IntentChat: buildChatContext,
	turn.IntentRAG:  buildRAGContext,
	turn.IntentTool: buildToolContext,
}

func systemPrompt(in Input) string {
	build, ok := contextBuilders[in.Intent]
	if !ok {
		build = buildChatContext
	}
	return build(in)
}

func buildChatContext(Input) string {
	return basePrompt
}

func buildRAGContext(in Input) string {
	return fmt.Sprintf(ragPromptFormat, strings.Join(in.Docs, "\n"))
}

func buildToolContext(in Input) string {
	payload, err := json.MarshalIndent(in.ToolResult, "", "  ")
	if err != nil {
		payload = []byte(`{"success": false}`)
	}
	return basePrompt + fmt.Sprintf(toolContextFormat, in.ToolName, string(payload))
}

// historyMessages converts the trailing window of prior messages into model
// messages, oldest first.
func historyMessages(history []chat.Message) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	start := 0
	if len(history) > historyLimit {
		start = len(history) - historyLimit
	}

	converted := make([]*schema.Message, 0, len(history)-start)
	for _, msg := range history[start:] {
		switch msg.Role {
		case chat.RoleUser:
			converted = append(converted, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			converted = append(converted, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return converted
}

// Apology renders the user-facing text for a generation fault.
func Apology(err error) string {
	return fmt.Sprintf(apologyFormat, err)
}
