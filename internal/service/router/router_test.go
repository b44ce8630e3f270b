package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/model/turn"
)

func TestParseRouterOutput(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		out, err := parseRouterOutput(`{"intent":"tool","tool_name":"get_schedule","tool_args":{"event_type":"broadcast"}}`)
		require.NoError(t, err)
		assert.Equal(t, "tool", out.Intent)
		assert.Equal(t, "get_schedule", out.ToolName)
		assert.Equal(t, "broadcast", out.ToolArgs["event_type"])
	})

	t.Run("fenced with prose", func(t *testing.T) {
		raw := "알겠어요! 분류 결과입니다.\n```json\n{\"intent\": \"rag\"}\n```"
		out, err := parseRouterOutput(raw)
		require.NoError(t, err)
		assert.Equal(t, "rag", out.Intent)
	})

	t.Run("no object", func(t *testing.T) {
		_, err := parseRouterOutput("chat")
		assert.Error(t, err)
	})

	t.Run("malformed object", func(t *testing.T) {
		_, err := parseRouterOutput(`{"intent": }`)
		assert.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	log := zap.NewNop()

	t.Run("tool intent with valid name", func(t *testing.T) {
		args := map[string]any{"mood": "happy"}
		d := Resolve("tool", "'recommend_song'", args, log)
		assert.Equal(t, turn.IntentTool, d.Intent)
		assert.Equal(t, "recommend_song", d.ToolName)
		assert.Equal(t, args, d.ToolArgs)
	})

	t.Run("tool intent without surviving name downgrades to chat", func(t *testing.T) {
		d := Resolve("tool", "!@#~", map[string]any{"x": 1}, log)
		assert.Equal(t, turn.IntentChat, d.Intent)
		assert.Empty(t, d.ToolName)
		assert.Nil(t, d.ToolArgs)
	})

	t.Run("non-tool intent clears tool fields", func(t *testing.T) {
		d := Resolve("rag", "get_schedule", map[string]any{"x": 1}, log)
		assert.Equal(t, turn.IntentRAG, d.Intent)
		assert.Empty(t, d.ToolName)
		assert.Nil(t, d.ToolArgs)
	})

	t.Run("unknown intent collapses to chat", func(t *testing.T) {
		d := Resolve("banana", "", nil, log)
		assert.Equal(t, turn.IntentChat, d.Intent)
	})
}
