package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"farmtrace/assistant/features/assistant"
	"farmtrace/assistant/internal/config"
	"farmtrace/assistant/internal/middleware"
	"farmtrace/assistant/internal/rag"
	"farmtrace/assistant/internal/worker"
)

type App struct {
	Handler       http.Handler
	Service       *rag.Service
	EmbedConsumer *worker.EmbedConsumer

	port int
}

func New(cfg *config.Config, deps *Dependencies, logger *slog.Logger) (*App, error) {
	queryLogger, err := rag.NewFileQueryLogger("data/logs/query.log")
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = rag.NewQueryLogger(os.Stdout)
	}

	service := rag.NewService(deps.Gemini, deps.VectorStore, deps.Gemini,
		deps.Availability, cfg.TopK, queryLogger)
	askHandler := assistant.NewHandler(service)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()
	mux.Handle("POST /assistant/ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	a := &App{
		Handler: mux,
		Service: service,
		port:    cfg.ServerPort,
	}

	if cfg.EnableEmbedWorker && deps.Availability.Generation && deps.VectorStore != nil {
		a.EmbedConsumer = worker.NewEmbedConsumer(deps.Gemini, deps.VectorStore)
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
