// Package chat exposes the turn pipeline over HTTP: a blocking endpoint, a
// Server-Sent Events stream, and a WebSocket stream.
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/model/turn"
	"github.com/luminari-dev/lumi-agent/internal/service/agent"
	"github.com/luminari-dev/lumi-agent/pkg/utils"
)

// TurnRunner is the orchestrator surface the handlers need.
type TurnRunner interface {
	Run(ctx context.Context, req turn.Request) (turn.Response, error)
	Stream(ctx context.Context, req turn.Request) <-chan agent.Event
}

// Handler serves the chat endpoints.
type Handler struct {
	orch     TurnRunner
	validate *validator.Validate
	cache    *gocache.Cache
	log      *zap.Logger
}

// New creates the handler. cacheTTL <= 0 disables the response cache.
func New(orch TurnRunner, cacheTTL time.Duration, log *zap.Logger) *Handler {
	var responseCache *gocache.Cache
	if cacheTTL > 0 {
		responseCache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &Handler{
		orch:     orch,
		validate: validator.New(),
		cache:    responseCache,
		log:      log,
	}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/chat/stream", h.handleChatStream)
	r.Get("/chat/ws", h.handleChatWS)
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (turn.Request, bool) {
	var req turn.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}
	if h.orch == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "agent unavailable")
		return
	}

	cacheKey := req.SessionID + "\x00" + req.Message
	if h.cache != nil {
		if hit, found := h.cache.Get(cacheKey); found {
			cached := hit.(turn.Response)
			cached.Cached = true
			cached.Timestamp = time.Now().UTC()
			utils.RespondJSON(w, http.StatusOK, cached)
			return
		}
	}

	resp, err := h.orch.Run(r.Context(), req)
	if err != nil {
		h.log.Error("turn failed", zap.Error(err), zap.String("session_id", req.SessionID))
		utils.RespondError(w, http.StatusInternalServerError, "agent processing failed")
		return
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, resp, gocache.DefaultExpiration)
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleChatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}
	if h.orch == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "agent unavailable")
		return
	}

	utils.SetupSSEHeaders(w)

	for ev := range h.orch.Stream(r.Context(), req) {
		if err := utils.SendSSEChunk(w, flusher, toWire(ev)); err != nil {
			h.log.Debug("sse client gone", zap.Error(err), zap.String("session_id", req.SessionID))
			return
		}
	}

	h.log.Info("sse stream complete", zap.String("session_id", req.SessionID))
}
