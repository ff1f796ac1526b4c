package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"farmtrace/assistant/internal/adapter/gemini"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *gemini.Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := gemini.New(context.Background(), "test-key", "text-embedding-004", "gemini-2.0-flash",
		option.WithEndpoint(ts.URL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func embeddingHandler(values []float32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": map[string]interface{}{
				"values": values,
			},
		})
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	client, err := gemini.New(context.Background(), "", "text-embedding-004", "gemini-2.0-flash")
	assert.ErrorIs(t, err, gemini.ErrNotConfigured)
	assert.Nil(t, client)
}

func TestClient_EmbedTexts(t *testing.T) {
	ctx := context.Background()

	t.Run("Alignment Preserved", func(t *testing.T) {
		client := newTestClient(t, embeddingHandler([]float32{0.1, 0.2, 0.3}))

		vecs, err := client.EmbedTexts(ctx, []string{"first", "", "third"})
		require.NoError(t, err)
		require.Len(t, vecs, 3)
		assert.Len(t, vecs[0], 3)
		assert.NotNil(t, vecs[1])
		assert.Empty(t, vecs[1])
		assert.Len(t, vecs[2], 3)
	})

	t.Run("Empty Input", func(t *testing.T) {
		client := newTestClient(t, embeddingHandler([]float32{0.1}))

		vecs, err := client.EmbedTexts(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, vecs)
	})

	t.Run("Missing Vector Values", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"embedding": map[string]interface{}{},
			})
		})

		_, err := client.EmbedTexts(ctx, []string{"hello"})
		assert.ErrorIs(t, err, gemini.ErrEmbeddingFormat)
	})
}

func TestClient_EmbedQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		client := newTestClient(t, embeddingHandler([]float32{0.5, 0.6}))

		vec, err := client.EmbedQuery(ctx, "how to store onions")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0.6}, vec)
	})

	t.Run("Empty Query Yields Empty Vector", func(t *testing.T) {
		called := false
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		vec, err := client.EmbedQuery(ctx, "")
		require.NoError(t, err)
		assert.NotNil(t, vec)
		assert.Empty(t, vec)
		assert.False(t, called, "empty query must not hit the backend")
	})
}

func TestClient_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns Model Text", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{
						"content": map[string]interface{}{
							"parts": []map[string]interface{}{
								{"text": "Store onions in a cool, dry place."},
							},
						},
					},
				},
			})
		})

		answer, err := client.Generate(ctx, []string{"instructions", "question"})
		require.NoError(t, err)
		assert.Equal(t, "Store onions in a cool, dry place.", answer)
	})

	t.Run("Empty Response Uses Fallback", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{},
			})
		})

		answer, err := client.Generate(ctx, []string{"prompt"})
		require.NoError(t, err)
		assert.Equal(t, gemini.FallbackAnswer, answer)
		assert.False(t, strings.Contains(answer, "error"))
	})
}
