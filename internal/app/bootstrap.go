package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"farmtrace/assistant/internal/adapter/gemini"
	wstore "farmtrace/assistant/internal/adapter/weaviate"
	"farmtrace/assistant/internal/config"
	"farmtrace/assistant/internal/rag"
	"farmtrace/assistant/internal/vector"
)

type VectorStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []rag.IndexedChunk) error
	QueryNearest(ctx context.Context, vector []float32, k int) ([]rag.Candidate, error)
}

type Dependencies struct {
	VectorStore  VectorStore
	Gemini       *gemini.Client
	Availability rag.Availability
	NSQProducer  *nsq.Producer
}

// Bootstrap builds the external clients the pipeline depends on. A backend
// that cannot be reached degrades the matching capability instead of
// failing startup: the assistant still answers without retrieval, and the
// HTTP surface still serves 503s without generation.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	// Weaviate
	wCfg := weaviate.Config{Host: cfg.WeaviateHost, Scheme: cfg.WeaviateScheme}
	wClient, err := weaviate.NewClient(wCfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client error: %w", err)
	}

	cols := vector.Collections{
		Chunk:   cfg.ChunkCollection,
		Concept: cfg.ConceptCollection,
		Edge:    cfg.EdgeCollection,
	}
	vecStore := wstore.NewStore(wClient, cols)

	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	if err := EnsureSchemaWithRetry(ctx, vecStore, cfg.BootstrapRetryAttempts, retryDelay); err != nil {
		slog.Warn("weaviate unreachable, retrieval disabled", "error", err)
	} else {
		deps.VectorStore = vecStore
		deps.Availability.Retrieval = true
	}

	// Gemini
	gClient, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.GenerationModel)
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		slog.Warn("gemini api key not set, generation disabled")
	case err != nil:
		return nil, fmt.Errorf("gemini client error: %w", err)
	default:
		deps.Gemini = gClient
		deps.Availability.Generation = true
	}

	// NSQ producer, only when the async embed path is on
	if cfg.EnableEmbedWorker {
		producer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
		if err != nil {
			return nil, fmt.Errorf("nsq producer error: %w", err)
		}
		deps.NSQProducer = producer
		createTopics(cfg.NSQDHTTP)
	}

	return deps, nil
}

func createTopics(nsqdHTTP string) {
	create := func(topic string) {
		url := fmt.Sprintf("http://%s/topic/create?topic=%s", nsqdHTTP, topic)
		resp, err := http.Post(url, "application/json", nil) // #nosec G107 -- URL is built from internal NSQ config, not user input
		if err != nil {
			slog.Warn("failed to create NSQ topic", "topic", topic, "error", err)
			return
		}
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close NSQ topic creation response body", "error", closeErr)
		}
	}

	go func() {
		time.Sleep(2 * time.Second)
		create(config.TopicIngestEmbed)
	}()
}

// EnsureSchemaWithRetry delegates schema check to a helper with retry logic.
func EnsureSchemaWithRetry(ctx context.Context, store VectorStore, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = store.EnsureSchema(ctx); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
