package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chathandler "github.com/luminari-dev/lumi-agent/internal/handler/chat"
	"github.com/luminari-dev/lumi-agent/internal/middleware"
	"github.com/luminari-dev/lumi-agent/pkg/utils"
)

// NewRouter wires HTTP routes to the turn pipeline. orch may be nil when the
// chat model is unconfigured; the chat endpoints then answer 503.
func NewRouter(orch chathandler.TurnRunner, cacheTTL time.Duration, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	chatHandler := chathandler.New(orch, cacheTTL, log)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	return r
}
