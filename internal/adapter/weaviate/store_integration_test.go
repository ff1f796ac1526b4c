package weaviate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmtrace/assistant/internal/adapter/weaviate"
	"farmtrace/assistant/internal/rag"
	"farmtrace/assistant/internal/testutils"
	"farmtrace/assistant/internal/vector"
)

func TestStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	cols := vector.Collections{
		Chunk:   "AgriResearchChunk",
		Concept: "AgriConcept",
		Edge:    "AgriEdge",
	}
	store := weaviate.NewStore(s.Weaviate, cols)
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	// Second call must be a no-op against the existing schema.
	require.NoError(t, store.EnsureSchema(ctx))

	chunks := []rag.IndexedChunk{
		{
			Chunk: rag.Chunk{
				ID:   "soil_health_chunk_1",
				Text: "Crop rotation restores nitrogen levels in depleted soil.",
				Metadata: rag.Metadata{
					SourceFile: "soil_health.pdf",
					ChunkIndex: 1,
				},
			},
			Vector: []float32{0.9, 0.1, 0.0},
		},
		{
			Chunk: rag.Chunk{
				ID:   "cold_chain_chunk_1",
				Text: "Leafy vegetables spoil quickly above 10 degrees in transit.",
				Metadata: rag.Metadata{
					SourceFile: "cold_chain.pdf",
					ChunkIndex: 1,
				},
			},
			Vector: []float32{0.0, 0.1, 0.9},
		},
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks))

	// Nearest to the first vector.
	got, err := store.QueryNearest(ctx, []float32{0.9, 0.1, 0.0}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "soil_health_chunk_1", got[0].ID)
	assert.Equal(t, "soil_health.pdf", got[0].SourceFile)
	assert.Equal(t, 1, got[0].ChunkIndex)
	if got[0].Distance != nil && len(got) > 1 && got[1].Distance != nil {
		assert.LessOrEqual(t, *got[0].Distance, *got[1].Distance)
	}

	// Re-upserting the same chunk must not duplicate it.
	require.NoError(t, store.UpsertChunks(ctx, chunks[:1]))
	got, err = store.QueryNearest(ctx, []float32{0.9, 0.1, 0.0}, 10)
	require.NoError(t, err)

	seen := 0
	for _, c := range got {
		if c.ID == "soil_health_chunk_1" {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}
