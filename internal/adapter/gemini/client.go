package gemini

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	// ErrNotConfigured is returned by every call on a client that was never
	// given an API key. Startup treats the missing key as a degraded
	// feature, not a failure, so the error surfaces at call time.
	ErrNotConfigured = errors.New("gemini api key not configured")

	// ErrEmbeddingFormat marks a backend response whose vector payload is
	// missing or empty. It is fatal for the call that produced it.
	ErrEmbeddingFormat = errors.New("unexpected embedding response: missing vector values")
)

// Client wraps a single genai client for both embedding and generation.
// It is constructed once at bootstrap and shared process-wide.
type Client struct {
	client          *genai.Client
	embeddingModel  string
	generationModel string
}

func New(ctx context.Context, apiKey, embeddingModel, generationModel string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, all...)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
