// Package agent drives the per-turn state machine: route the user message,
// gather intent-specific context, compose the answer, and expose the turn's
// progress as an ordered event stream.
package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/model/chat"
	"github.com/luminari-dev/lumi-agent/internal/model/turn"
	"github.com/luminari-dev/lumi-agent/internal/repository"
	"github.com/luminari-dev/lumi-agent/internal/service/compose"
)

// Router classifies a user message. Implementations fail open: a classifier
// fault yields a plain chat decision, never an error.
type Router interface {
	Classify(ctx context.Context, userMessage string) turn.Decision
}

// Dispatcher executes one whitelisted tool operation. Faults are carried
// in-band via the result.
type Dispatcher interface {
	Execute(ctx context.Context, name string, args map[string]any, sessionID, userID string) turn.ToolResult
}

// Composer builds the final answer. Compose folds generation faults into an
// apology; ComposeStream surfaces them so the stream can report an explicit
// error event.
type Composer interface {
	Compose(ctx context.Context, in compose.Input) (string, error)
	ComposeStream(ctx context.Context, in compose.Input) (compose.TokenStream, error)
}

// SessionStore persists completed turns and serves prior history.
type SessionStore interface {
	History(sessionID string) []chat.Message
	AppendTurn(sessionID string, userText, assistantText string)
}

// fallbackDocs ground the answer when retrieval yields nothing usable.
var fallbackDocs = []string{
	"루미는 프리즘 행성 출신 외계인 공주야",
	"루미의 팬덤은 루미너스야",
}

// Orchestrator owns the four-stage pipeline for every turn.
type Orchestrator struct {
	router    Router
	retriever repository.Retriever
	tools     Dispatcher
	composer  Composer
	sessions  SessionStore
	topK      int
	log       *zap.Logger
}

// New wires the orchestrator. retriever may be nil, in which case the rag
// branch always uses the fallback passages.
func New(router Router, retriever repository.Retriever, tools Dispatcher, composer Composer, sessions SessionStore, topK int, log *zap.Logger) *Orchestrator {
	if topK <= 0 {
		topK = 3
	}
	return &Orchestrator{
		router:    router,
		retriever: retriever,
		tools:     tools,
		composer:  composer,
		sessions:  sessions,
		topK:      topK,
		log:       log,
	}
}

// turnState is the mutable record of one request. It is owned by a single
// orchestrator run and discarded at turn end.
type turnState struct {
	sessionID string
	userID    string
	query     string
	history   []chat.Message

	intent        turn.Intent
	retrievedDocs []string
	toolName      string
	toolArgs      map[string]any
	toolResult    *turn.ToolResult
}

func (o *Orchestrator) newTurnState(req turn.Request) *turnState {
	return &turnState{
		sessionID: req.SessionID,
		userID:    req.UserID,
		query:     req.Message,
		history:   o.sessions.History(req.SessionID),
		intent:    turn.IntentChat,
	}
}

// Run executes one blocking turn. No stage is permitted to end the turn
// without user-visible output, so the returned response always carries text.
func (o *Orchestrator) Run(ctx context.Context, req turn.Request) (turn.Response, error) {
	st := o.newTurnState(req)
	m := newMachine(o.log)

	o.gather(ctx, st, m, nil)

	text, err := o.composer.Compose(ctx, o.composeInput(st))
	if err != nil {
		text = compose.Apology(err)
	}
	m.enter(StateDone, nil)

	if text != "" {
		o.sessions.AppendTurn(st.sessionID, st.query, text)
	}

	o.log.Info("turn complete",
		zap.String("session_id", st.sessionID),
		zap.String("intent", string(st.intent)),
		zap.String("tool", st.toolName))

	return turn.Response{
		Message:   text,
		ToolUsed:  toolUsed(st),
		Timestamp: time.Now().UTC(),
	}, nil
}

// Stream executes one turn and returns its merged event stream. The channel
// is bounded; a slow consumer blocks the pipeline rather than losing events.
// Canceling ctx stops the run and releases the in-flight generation call.
func (o *Orchestrator) Stream(ctx context.Context, req turn.Request) <-chan Event {
	out := make(chan Event, streamBufferSize)
	stages := make(chan Event)
	tokens := make(chan Event)

	go o.produce(ctx, req, stages, tokens)
	go Merge(ctx, stages, tokens, out)

	return out
}

// produce runs the pipeline, publishing stage events on stages and token
// events (via the pump goroutine) on tokens.
func (o *Orchestrator) produce(ctx context.Context, req turn.Request, stages, tokens chan<- Event) {
	defer close(stages)
	defer close(tokens)

	st := o.newTurnState(req)
	m := newMachine(o.log)

	emit := func(ev Event) bool {
		select {
		case stages <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !o.gather(ctx, st, m, emit) {
		return
	}

	stream, err := o.composer.ComposeStream(ctx, o.composeInput(st))
	if err != nil {
		o.log.Error("generation stream failed to start", zap.Error(err))
		emit(Event{Kind: EventError, Err: err.Error()})
		return
	}

	text, pumpErr := o.pumpTokens(ctx, stream, tokens)
	if pumpErr != nil {
		if errors.Is(pumpErr, context.Canceled) {
			return
		}
		o.log.Error("generation stream failed", zap.Error(pumpErr))
		emit(Event{Kind: EventError, Err: pumpErr.Error()})
		return
	}

	m.enter(StateDone, emit)

	// History mutates only once the turn has produced non-empty final text.
	if text != "" {
		o.sessions.AppendTurn(st.sessionID, st.query, text)
	}

	emit(Event{Kind: EventFinal, Text: text, ToolUsed: toolUsed(st)})

	o.log.Info("streamed turn complete",
		zap.String("session_id", st.sessionID),
		zap.String("intent", string(st.intent)),
		zap.String("tool", st.toolName))
}

// gather runs routing and the intent-selected branch, leaving the machine in
// StateComposing. Returns false only when the stream consumer disconnected.
func (o *Orchestrator) gather(ctx context.Context, st *turnState, m *machine, emit func(Event) bool) bool {
	if !m.enter(StateRouted, emit) {
		return false
	}

	decision := o.router.Classify(ctx, st.query)
	st.intent = decision.Intent
	st.toolName = decision.ToolName
	st.toolArgs = decision.ToolArgs

	switch st.intent {
	case turn.IntentRAG:
		if !m.enter(StateRetrieving, emit) {
			return false
		}
		st.retrievedDocs = o.retrieve(ctx, st.query)
	case turn.IntentTool:
		if !m.enter(StateToolRunning, emit) {
			return false
		}
		result := o.tools.Execute(ctx, st.toolName, st.toolArgs, st.sessionID, st.userID)
		st.toolResult = &result
	}

	return m.enter(StateComposing, emit)
}

// retrieve returns passage texts for the query, substituting the fixed
// fallback set when the retriever is absent, faults, or comes back empty.
func (o *Orchestrator) retrieve(ctx context.Context, query string) []string {
	if o.retriever == nil {
		return append([]string(nil), fallbackDocs...)
	}

	docs, err := o.retriever.Search(ctx, query, o.topK, "active")
	if err != nil {
		o.log.Warn("retrieval failed, using fallback passages", zap.Error(err))
		return append([]string(nil), fallbackDocs...)
	}
	if len(docs) == 0 {
		o.log.Warn("retrieval returned nothing, using fallback passages")
		return append([]string(nil), fallbackDocs...)
	}

	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}
	return contents
}

// pumpTokens drains the generation stream in its own goroutine, forwarding
// each fragment as a token event and returning the concatenated text.
func (o *Orchestrator) pumpTokens(ctx context.Context, stream compose.TokenStream, tokens chan<- Event) (string, error) {
	type pumpResult struct {
		text string
		err  error
	}
	done := make(chan pumpResult, 1)

	go func() {
		defer stream.Close()
		var sb strings.Builder
		for {
			tok, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				done <- pumpResult{text: sb.String()}
				return
			}
			if err != nil {
				done <- pumpResult{text: sb.String(), err: err}
				return
			}
			sb.WriteString(tok)
			select {
			case tokens <- Event{Kind: EventToken, Token: tok}:
			case <-ctx.Done():
				done <- pumpResult{err: ctx.Err()}
				return
			}
		}
	}()

	result := <-done
	return result.text, result.err
}

func (o *Orchestrator) composeInput(st *turnState) compose.Input {
	return compose.Input{
		Intent:     st.intent,
		Query:      st.query,
		History:    st.history,
		Docs:       st.retrievedDocs,
		ToolName:   st.toolName,
		ToolResult: st.toolResult,
	}
}

func toolUsed(st *turnState) string {
	if st.intent == turn.IntentTool {
		return st.toolName
	}
	return ""
}
