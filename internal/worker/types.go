package worker

import (
	"context"

	"farmtrace/assistant/internal/rag"
)

// ChunkEmbedTask is the payload published per chunk when ingestion runs
// through the async worker path instead of embedding inline.
type ChunkEmbedTask struct {
	ChunkID    string `json:"chunk_id"`
	Content    string `json:"content"`
	SourceFile string `json:"source_file"`
	ChunkIndex int    `json:"chunk_index"`

	CorrelationID string `json:"correlation_id"`
}

type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorStore interface {
	UpsertChunks(ctx context.Context, chunks []rag.IndexedChunk) error
}
