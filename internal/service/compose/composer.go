// Package compose builds the final natural-language answer for a turn from
// intent-specific context plus bounded conversation history.
package compose

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// TokenStream yields generation output one fragment at a time. Recv returns
// io.EOF when the stream is exhausted.
type TokenStream interface {
	Recv() (string, error)
	Close()
}

// Service runs the response-generation chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	log   *zap.Logger
}

// NewService compiles the generation chain on the shared chat model.
func NewService(ctx context.Context, chatModel model.ChatModel, log *zap.Logger) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("사용자: {query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile composer chain: %w", err)
	}

	return &Service{chain: runnable, log: log}, nil
}

// Compose generates the full answer in one call. A generation fault is
// folded into an apology so the turn still completes with user-visible text.
func (s *Service) Compose(ctx context.Context, in Input) (string, error) {
	msg, err := s.chain.Invoke(ctx, s.chainInput(in))
	if err != nil {
		s.log.Warn("generation failed, returning apology", zap.Error(err))
		return Apology(err), nil
	}
	return msg.Content, nil
}

// ComposeStream starts token-level generation for the same input. Unlike
// Compose, faults are returned to the caller: the streaming pipeline reports
// them as explicit error events.
func (s *Service) ComposeStream(ctx context.Context, in Input) (TokenStream, error) {
	stream, err := s.chain.Stream(ctx, s.chainInput(in))
	if err != nil {
		return nil, fmt.Errorf("start generation stream: %w", err)
	}
	return &einoTokenStream{inner: stream}, nil
}

func (s *Service) chainInput(in Input) map[string]any {
	return map[string]any{
		"system":  systemPrompt(in),
		"history": historyMessages(in.History),
		"query":   in.Query,
	}
}

type einoTokenStream struct {
	inner *schema.StreamReader[*schema.Message]
}

func (t *einoTokenStream) Recv() (string, error) {
	for {
		chunk, err := t.inner.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", err
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}
		return chunk.Content, nil
	}
}

func (t *einoTokenStream) Close() {
	t.inner.Close()
}
