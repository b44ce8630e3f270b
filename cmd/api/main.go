package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/config"
	"github.com/luminari-dev/lumi-agent/internal/handler"
	chathandler "github.com/luminari-dev/lumi-agent/internal/handler/chat"
	"github.com/luminari-dev/lumi-agent/internal/repository"
	"github.com/luminari-dev/lumi-agent/internal/service/agent"
	"github.com/luminari-dev/lumi-agent/internal/service/compose"
	"github.com/luminari-dev/lumi-agent/internal/service/router"
	"github.com/luminari-dev/lumi-agent/internal/service/session"
	"github.com/luminari-dev/lumi-agent/internal/service/tool"
	"github.com/luminari-dev/lumi-agent/pkg/embedding"
	"github.com/luminari-dev/lumi-agent/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zl := logger.New(cfg.Log.FilePath, cfg.Log.Prod)
	defer func() { _ = zl.Sync() }()

	sessions := session.NewStore(cfg.Session.Capacity)

	// Optional Postgres-backed collaborators. Without a database the tool
	// operations fail softly and retrieval uses the fixed fallback passages.
	var (
		pool      *pgxpool.Pool
		retriever repository.Retriever
		schedules tool.ScheduleSource
		letters   tool.LetterSink
	)
	if cfg.RAG.Enabled() {
		pool, err = repository.NewPool(ctx, cfg.RAG.DatabaseURL)
		if err != nil {
			zl.Warn("database unavailable, continuing without it", zap.Error(err))
		} else {
			defer pool.Close()
			embedder := embedding.NewHTTPProvider(cfg.RAG.EmbeddingURL, cfg.RAG.EmbeddingModel)
			retriever = repository.NewVectorRetriever(pool, embedder, zl.Named("retriever"))
			schedules = repository.NewScheduleStore(pool, zl.Named("schedules"))
			letters = repository.NewFanLetterStore(pool, zl.Named("letters"))
			zl.Info("database connected")
		}
	} else {
		zl.Info("DATABASE_URL not set, running with mock collaborators only")
	}

	var orch chathandler.TurnRunner
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			zl.Warn("chat model init failed, chat endpoints disabled", zap.Error(err))
		} else {
			intentRouter, err := router.NewService(ctx, chatModel, zl.Named("router"))
			if err != nil {
				zl.Fatal("router chain init failed", zap.Error(err))
			}
			composer, err := compose.NewService(ctx, chatModel, zl.Named("composer"))
			if err != nil {
				zl.Fatal("composer chain init failed", zap.Error(err))
			}
			dispatcher := tool.NewDispatcher(schedules, letters, zl.Named("tools"))
			orch = agent.New(intentRouter, retriever, dispatcher, composer, sessions, cfg.RAG.TopK, zl.Named("agent"))
			zl.Info("agent pipeline initialized")
		}
	} else {
		zl.Warn("model credentials not set, chat endpoints disabled")
	}

	mux := handler.NewRouter(orch, cfg.Cache.TTL, zl.Named("http"))
	startServer(ctx, cfg.Server, mux, zl)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, mux http.Handler, zl *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zl.Info("lumi agent listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
