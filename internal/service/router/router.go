// Package router classifies a user message into an intent and, when the
// intent is a tool call, a sanitized tool request.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/model/turn"
)

// Service wraps the classification chain. A classifier fault never aborts a
// turn: every failure path collapses to a plain chat decision.
type Service struct {
	classifier compose.Runnable[map[string]any, *schema.Message]
	log        *zap.Logger
	now        func() time.Time
}

// NewService compiles the classification chain on the shared chat model.
func NewService(ctx context.Context, chatModel model.ChatModel, log *zap.Logger) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(routerPrompt),
		schema.UserMessage("오늘 날짜: {current_date}\n\n사용자: {query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile router chain: %w", err)
	}

	return &Service{
		classifier: runnable,
		log:        log,
		now:        time.Now,
	}, nil
}

// Classify routes the user message. The returned decision always upholds:
// intent=tool implies a whitelisted ToolName, and any other intent carries no
// tool name or args.
func (s *Service) Classify(ctx context.Context, userMessage string) turn.Decision {
	chatDecision := turn.Decision{Intent: turn.IntentChat}
	if s == nil || s.classifier == nil {
		return chatDecision
	}

	input := map[string]any{
		"current_date": s.now().Format("2006-01-02"),
		"query":        userMessage,
	}

	msg, err := s.classifier.Invoke(ctx, input)
	if err != nil {
		s.log.Warn("router classification failed, falling back to chat", zap.Error(err))
		return chatDecision
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		s.log.Warn("router returned empty output, falling back to chat")
		return chatDecision
	}

	parsed, err := parseRouterOutput(msg.Content)
	if err != nil {
		s.log.Warn("router output unparsable, falling back to chat",
			zap.Error(err), zap.String("raw", truncate(msg.Content, 200)))
		return chatDecision
	}

	return Resolve(parsed.Intent, parsed.ToolName, parsed.ToolArgs, s.log)
}

// Resolve turns raw classifier fields into a validated decision. Split out of
// Classify so the sanitization rules are testable without a model.
func Resolve(rawIntent, rawToolName string, toolArgs map[string]any, log *zap.Logger) turn.Decision {
	intent := turn.ParseIntent(rawIntent)
	toolName := SanitizeToolName(rawToolName)

	if intent == turn.IntentTool && toolName == "" {
		if log != nil {
			log.Warn("intent=tool without a valid tool name, downgrading to chat",
				zap.String("raw_tool_name", truncate(rawToolName, 80)))
		}
		return turn.Decision{Intent: turn.IntentChat}
	}

	if intent != turn.IntentTool {
		return turn.Decision{Intent: intent}
	}

	return turn.Decision{Intent: turn.IntentTool, ToolName: toolName, ToolArgs: toolArgs}
}

type routerOutput struct {
	Intent   string         `json:"intent"`
	ToolName string         `json:"tool_name"`
	ToolArgs map[string]any `json:"tool_args"`
}

// parseRouterOutput extracts the first JSON object from the model reply. The
// model occasionally wraps the object in prose or a code fence.
func parseRouterOutput(raw string) (routerOutput, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return routerOutput{}, fmt.Errorf("no JSON object in router output")
	}

	var out routerOutput
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return routerOutput{}, fmt.Errorf("decode router output: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
