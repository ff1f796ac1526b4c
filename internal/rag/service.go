package rag

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrGenerationUnavailable is returned when an answer is requested but the
// generation backend was never configured. Missing credentials degrade the
// feature at startup; the failure only surfaces here, at call time.
var ErrGenerationUnavailable = errors.New("generation backend not configured")

type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	QueryNearest(ctx context.Context, vector []float32, k int) ([]Candidate, error)
}

type Generator interface {
	Generate(ctx context.Context, parts []string) (string, error)
}

type Service struct {
	embedder  Embedder
	store     VectorStore
	generator Generator
	avail     Availability
	topK      int
	logger    *QueryLogger
}

func NewService(e Embedder, s VectorStore, g Generator, avail Availability, topK int, l *QueryLogger) *Service {
	return &Service{embedder: e, store: s, generator: g, avail: avail, topK: topK, logger: l}
}

// Answer runs the full pipeline: retrieve the single most relevant chunk,
// compose the role-tailored prompt, and generate the answer text.
// Retrieval coming up empty is a normal outcome, not an error; the prompt
// is simply composed without context.
func (s *Service) Answer(ctx context.Context, question string, role Role, useCase string) (string, error) {
	if !s.avail.Generation {
		return "", ErrGenerationUnavailable
	}

	start := time.Now()

	var contexts []string
	if s.avail.Retrieval {
		chunk, err := s.retrieve(ctx, question, s.topK)
		if err != nil {
			return "", err
		}
		if chunk != nil {
			contexts = append(contexts, chunk.Text)
		}
	}

	parts := BuildPrompt(question, role, useCase, contexts)

	answer, err := s.generator.Generate(ctx, parts)
	if err != nil {
		return "", err
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Question:    question,
			Role:        string(role),
			WithContext: len(contexts) > 0,
			Duration:    time.Since(start),
		})
	}
	return answer, nil
}

// retrieve embeds the question and selects the single best candidate from
// the vector store. It returns nil when the question embeds to no vector,
// the store has nothing, or every candidate is filtered out.
func (s *Service) retrieve(ctx context.Context, question string, topK int) (*Chunk, error) {
	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, nil
	}

	candidates, err := s.store.QueryNearest(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	kept := candidates[:0:0]
	for _, c := range candidates {
		if strings.TrimSpace(c.Text) != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		slog.DebugContext(ctx, "retrieval returned no usable candidates")
		return nil, nil
	}

	// Lower distance is better. Candidates without a distance fall back to
	// the store's ordering, which the contract guarantees is best-first.
	best := 0
	for i := 1; i < len(kept); i++ {
		if kept[i].Distance == nil || kept[best].Distance == nil {
			continue
		}
		if *kept[i].Distance < *kept[best].Distance {
			best = i
		}
	}

	c := kept[best]
	return &Chunk{
		ID:   c.ID,
		Text: c.Text,
		Metadata: Metadata{
			SourceFile: c.SourceFile,
			ChunkIndex: c.ChunkIndex,
		},
	}, nil
}
