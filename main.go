package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"farmtrace/assistant/internal/app"
	"farmtrace/assistant/internal/config"
	"farmtrace/assistant/internal/ingest"
	"farmtrace/assistant/internal/logger"
)

func main() {
	// Initialize structured logger
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. External clients
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	if deps.Gemini != nil {
		defer func() {
			if err := deps.Gemini.Close(); err != nil {
				slog.Warn("failed to close gemini client", "error", err)
			}
		}()
	}

	// `assistant ingest [dir]` loads research papers instead of serving.
	if len(os.Args) > 1 && os.Args[1] == "ingest" {
		if err := runIngest(ctx, cfg, deps); err != nil {
			slog.Error("ingestion failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// 3. HTTP application
	application, err := app.New(cfg, deps, slog.Default())
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	// 4. Embed worker consumer
	if application.EmbedConsumer != nil {
		consumer, err := nsq.NewConsumer(config.TopicIngestEmbed, "assistant", nsq.NewConfig())
		if err != nil {
			slog.Error("failed to create NSQ consumer for embed tasks", "error", err)
		} else {
			consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
				return application.EmbedConsumer.HandleMessage(m)
			}))
			if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
				slog.Error("failed to connect to NSQLookupd", "error", err)
			} else {
				slog.Info("NSQ embed consumer connected")
				defer consumer.Stop()
			}
		}
	}

	// 5. Start Server
	if err := application.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func runIngest(ctx context.Context, cfg *config.Config, deps *app.Dependencies) error {
	dir := cfg.ResearchDir
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	var ing *ingest.Ingester
	if cfg.EnableEmbedWorker && deps.NSQProducer != nil {
		ing = ingest.NewAsyncIngester(deps.NSQProducer, config.TopicIngestEmbed, cfg.MaxChunkChars)
	} else {
		if deps.Gemini == nil {
			slog.Error("ingestion requires a configured gemini api key")
			os.Exit(1)
		}
		if deps.VectorStore == nil {
			slog.Error("ingestion requires a reachable weaviate instance")
			os.Exit(1)
		}
		ing = ingest.NewIngester(deps.Gemini, deps.VectorStore, cfg.MaxChunkChars)
	}

	return ing.IngestDir(ctx, dir)
}
