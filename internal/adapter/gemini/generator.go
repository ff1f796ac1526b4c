package gemini

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// FallbackAnswer is returned when the generation model produces no text.
const FallbackAnswer = "I am unable to generate an answer right now. Please try again later."

// Generate invokes the generation model once with the ordered prompt parts
// and returns its text output. An empty or missing result is substituted
// with FallbackAnswer, never surfaced as an error.
func (c *Client) Generate(ctx context.Context, parts []string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrNotConfigured
	}

	model := c.client.GenerativeModel(c.generationModel)

	genParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		genParts = append(genParts, genai.Text(p))
	}

	res, err := model.GenerateContent(ctx, genParts...)
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "error", err, "model", c.generationModel)
		return "", err
	}

	text := responseText(res)
	if strings.TrimSpace(text) == "" {
		slog.WarnContext(ctx, "generation returned empty response, using fallback", "model", c.generationModel)
		return FallbackAnswer, nil
	}
	return text, nil
}

func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
