package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"farmtrace/assistant/internal/middleware"
	"farmtrace/assistant/internal/rag"
)

const embedTimeout = 60 * time.Second

// EmbedConsumer embeds one chunk per NSQ message and upserts it into the
// vector store. Returning an error requeues the message; malformed
// payloads are acked and dropped so they cannot poison the queue.
type EmbedConsumer struct {
	embedder Embedder
	store    VectorStore
}

func NewEmbedConsumer(e Embedder, s VectorStore) *EmbedConsumer {
	return &EmbedConsumer{embedder: e, store: s}
}

func (h *EmbedConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task ChunkEmbedTask
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if task.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, task.CorrelationID)
	}

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vectors, err := h.embedder.EmbedTexts(embedCtx, []string{task.Content})
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err, "chunk_id", task.ChunkID)
		return err // Retry
	}

	chunk := rag.IndexedChunk{
		Chunk: rag.Chunk{
			ID:   task.ChunkID,
			Text: task.Content,
			Metadata: rag.Metadata{
				SourceFile: task.SourceFile,
				ChunkIndex: task.ChunkIndex,
			},
		},
		Vector: vectors[0],
	}

	if err := h.store.UpsertChunks(embedCtx, []rag.IndexedChunk{chunk}); err != nil {
		slog.ErrorContext(ctx, "store chunk failed", "error", err, "chunk_id", task.ChunkID)
		return err // Retry
	}

	slog.InfoContext(ctx, "chunk stored", "chunk_id", task.ChunkID, "source_file", task.SourceFile)
	return nil
}
