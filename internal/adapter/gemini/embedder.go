package gemini

import (
	"context"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
)

// EmbedTexts embeds each text in input order. The result always has the
// same length as the input; an empty string maps to an empty (non-nil)
// vector without an API call, so callers can zip inputs with outputs.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if c == nil || c.client == nil {
		return nil, ErrNotConfigured
	}

	em := c.client.EmbeddingModel(c.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalDocument

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if text == "" {
			vectors = append(vectors, []float32{})
			continue
		}

		vec, err := c.embed(ctx, em, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

// EmbedQuery embeds a single retrieval query. An empty query yields an
// empty vector, which the retriever treats as "nothing to search for".
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if c == nil || c.client == nil {
		return nil, ErrNotConfigured
	}
	if text == "" {
		return []float32{}, nil
	}

	em := c.client.EmbeddingModel(c.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalQuery
	return c.embed(ctx, em, text)
}

func (c *Client) embed(ctx context.Context, em *genai.EmbeddingModel, text string) ([]float32, error) {
	slog.DebugContext(ctx, "embedding content", "model", c.embeddingModel, "length", len(text))

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err)
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, ErrEmbeddingFormat
	}
	return res.Embedding.Values, nil
}
