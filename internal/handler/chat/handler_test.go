package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/model/turn"
	"github.com/luminari-dev/lumi-agent/internal/service/agent"
)

type fakeRunner struct {
	resp   turn.Response
	events []agent.Event
	runs   int
}

func (f *fakeRunner) Run(context.Context, turn.Request) (turn.Response, error) {
	f.runs++
	return f.resp, nil
}

func (f *fakeRunner) Stream(context.Context, turn.Request) <-chan agent.Event {
	out := make(chan agent.Event, len(f.events))
	for _, ev := range f.events {
		out <- ev
	}
	close(out)
	return out
}

func newTestRouter(orch TurnRunner, cacheTTL time.Duration) chi.Router {
	r := chi.NewRouter()
	New(orch, cacheTTL, zap.NewNop()).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router chi.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatRejectsInvalidBody(t *testing.T) {
	router := newTestRouter(&fakeRunner{}, 0)

	rec := postJSON(t, router, "/chat", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsMissingFields(t *testing.T) {
	router := newTestRouter(&fakeRunner{}, 0)

	rec := postJSON(t, router, "/chat", `{"message":"안녕"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/chat", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsOversizedMessage(t *testing.T) {
	router := newTestRouter(&fakeRunner{}, 0)

	body, err := json.Marshal(turn.Request{
		Message:   strings.Repeat("가", 2001),
		SessionID: "s1",
	})
	require.NoError(t, err)

	rec := postJSON(t, router, "/chat", string(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatWithoutAgent(t *testing.T) {
	router := newTestRouter(nil, 0)

	rec := postJSON(t, router, "/chat", `{"message":"안녕","session_id":"s1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChatSuccess(t *testing.T) {
	runner := &fakeRunner{resp: turn.Response{
		Message:   "안녕, 루미너스!",
		ToolUsed:  "get_weather",
		Timestamp: time.Now().UTC(),
	}}
	router := newTestRouter(runner, 0)

	rec := postJSON(t, router, "/chat", `{"message":"날씨 어때?","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp turn.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "안녕, 루미너스!", resp.Message)
	assert.Equal(t, "get_weather", resp.ToolUsed)
	assert.False(t, resp.Cached)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestChatCachesRepeatedTurn(t *testing.T) {
	runner := &fakeRunner{resp: turn.Response{Message: "응!"}}
	router := newTestRouter(runner, time.Minute)

	body := `{"message":"안녕","session_id":"s1"}`

	rec := postJSON(t, router, "/chat", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var first turn.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.False(t, first.Cached)

	rec = postJSON(t, router, "/chat", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var second turn.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.True(t, second.Cached)
	assert.Equal(t, "응!", second.Message)

	assert.Equal(t, 1, runner.runs, "cache hit must not rerun the pipeline")
}

func TestChatCacheIsPerSession(t *testing.T) {
	runner := &fakeRunner{resp: turn.Response{Message: "응!"}}
	router := newTestRouter(runner, time.Minute)

	postJSON(t, router, "/chat", `{"message":"안녕","session_id":"s1"}`)
	postJSON(t, router, "/chat", `{"message":"안녕","session_id":"s2"}`)

	assert.Equal(t, 2, runner.runs)
}

func decodeSSE(t *testing.T, body string) []wireEvent {
	t.Helper()
	var events []wireEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev wireEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestChatStreamWireFormat(t *testing.T) {
	runner := &fakeRunner{events: []agent.Event{
		{Kind: agent.EventStatus, Label: "루미 생각 중..."},
		{Kind: agent.EventStatus, Label: "응답 작성 중..."},
		{Kind: agent.EventToken, Token: "안녕"},
		{Kind: agent.EventToken, Token: "!"},
		{Kind: agent.EventFinal, Text: "안녕!"},
		{Kind: agent.EventDone},
	}}
	router := newTestRouter(runner, 0)

	rec := postJSON(t, router, "/chat/stream", `{"message":"안녕","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := decodeSSE(t, rec.Body.String())
	require.Len(t, events, 6)

	assert.Equal(t, "thinking", events[0].Type)
	assert.Equal(t, "루미 생각 중...", events[0].Content)
	assert.Equal(t, "token", events[2].Type)
	assert.Equal(t, "안녕", events[2].Content)
	assert.Equal(t, "response", events[4].Type)
	assert.Equal(t, "안녕!", events[4].Content)
	assert.Equal(t, "done", events[5].Type)
}

func TestChatStreamErrorEvent(t *testing.T) {
	runner := &fakeRunner{events: []agent.Event{
		{Kind: agent.EventStatus, Label: "루미 생각 중..."},
		{Kind: agent.EventError, Err: "model unavailable"},
		{Kind: agent.EventDone},
	}}
	router := newTestRouter(runner, 0)

	rec := postJSON(t, router, "/chat/stream", `{"message":"안녕","session_id":"s1"}`)
	events := decodeSSE(t, rec.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "error", events[1].Type)
	assert.Equal(t, "model unavailable", events[1].Error)
	assert.Equal(t, "done", events[2].Type)
}

func TestChatStreamRejectsInvalidBody(t *testing.T) {
	router := newTestRouter(&fakeRunner{}, 0)

	rec := postJSON(t, router, "/chat/stream", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
