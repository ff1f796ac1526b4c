package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"farmtrace/assistant/internal/middleware"
	"farmtrace/assistant/internal/rag"
	"farmtrace/assistant/internal/text"
	"farmtrace/assistant/internal/worker"
)

type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type Upserter interface {
	UpsertChunks(ctx context.Context, chunks []rag.IndexedChunk) error
}

// TaskPublisher hands per-chunk embedding work to the async worker path.
type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// Ingester walks a directory of research documents and feeds their chunks
// into the vector store. It is a batch, offline operation; running it twice
// is safe because upserts are keyed by deterministic chunk ids.
type Ingester struct {
	embedder  Embedder
	store     Upserter
	publisher TaskPublisher
	topic     string
	maxChars  int
}

func NewIngester(e Embedder, s Upserter, maxChars int) *Ingester {
	return &Ingester{embedder: e, store: s, maxChars: maxChars}
}

// NewAsyncIngester publishes one embed task per chunk instead of embedding
// inline; the embed worker picks the tasks up and performs the upserts.
func NewAsyncIngester(p TaskPublisher, topic string, maxChars int) *Ingester {
	return &Ingester{publisher: p, topic: topic, maxChars: maxChars}
}

// IngestDir processes every supported document in dir, sorted by name for
// determinism. Unreadable or empty documents are skipped with a warning;
// they never fail the batch. An empty directory is a no-op.
func (ing *Ingester) IngestDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read research directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		slog.Info("no documents found in research directory", "dir", dir)
		return nil
	}

	total := 0
	for _, name := range names {
		n, err := ing.ingestDocument(ctx, dir, name)
		if err != nil {
			slog.Warn("skipping document", "file", name, "error", err)
			continue
		}
		total += n
	}

	slog.Info("ingestion complete", "documents", len(names), "chunks", total)
	return nil
}

func (ing *Ingester) ingestDocument(ctx context.Context, dir, name string) (int, error) {
	raw, err := extractText(filepath.Join(dir, name))
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("no text extracted")
	}

	chunks := ChunksForDocument(name, raw, ing.maxChars)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks produced")
	}

	if ing.publisher != nil {
		if err := ing.publishChunks(ctx, chunks); err != nil {
			return 0, err
		}
		slog.InfoContext(ctx, "document queued for embedding", "file", name, "chunks", len(chunks))
		return len(chunks), nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ing.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	indexed := make([]rag.IndexedChunk, len(chunks))
	for i, c := range chunks {
		indexed[i] = rag.IndexedChunk{Chunk: c, Vector: vectors[i]}
	}

	if err := ing.store.UpsertChunks(ctx, indexed); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	slog.InfoContext(ctx, "document ingested", "file", name, "chunks", len(chunks))
	return len(chunks), nil
}

func (ing *Ingester) publishChunks(ctx context.Context, chunks []rag.Chunk) error {
	for _, c := range chunks {
		task := worker.ChunkEmbedTask{
			ChunkID:       c.ID,
			Content:       c.Text,
			SourceFile:    c.Metadata.SourceFile,
			ChunkIndex:    c.Metadata.ChunkIndex,
			CorrelationID: middleware.GetCorrelationID(ctx),
		}
		body, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("marshal embed task: %w", err)
		}
		if err := ing.publisher.Publish(ing.topic, body); err != nil {
			return fmt.Errorf("publish embed task: %w", err)
		}
	}
	return nil
}

// ChunksForDocument splits raw document text and assigns deterministic
// chunk ids of the form <stem>_chunk_<n> (1-based, spaces replaced with
// underscores), so re-ingestion of the same document overwrites rather
// than duplicates.
func ChunksForDocument(fileName, raw string, maxChars int) []rag.Chunk {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	baseID := strings.ReplaceAll(stem, " ", "_")

	pieces := text.Chunk(raw, maxChars)
	chunks := make([]rag.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, rag.Chunk{
			ID:   fmt.Sprintf("%s_chunk_%d", baseID, i+1),
			Text: piece,
			Metadata: rag.Metadata{
				SourceFile: fileName,
				ChunkIndex: i + 1,
			},
		})
	}
	return chunks
}
