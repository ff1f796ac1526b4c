package weaviate

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"farmtrace/assistant/internal/rag"
	"farmtrace/assistant/internal/vector"
)

// chunkNamespace seeds the deterministic object UUIDs derived from chunk
// ids. Re-ingesting a document overwrites its existing entries instead of
// accumulating duplicates.
var chunkNamespace = uuid.MustParse("5e1c81f1-2f88-4f0b-a819-6a3e8d2c9b47")

// Store persists chunk/embedding pairs in a named Weaviate class and
// serves nearest-neighbor queries against it.
//
// Score contract: candidates are returned best-first, ordered by cosine
// distance where lower is better. Callers never infer the convention from
// the response shape.
type Store struct {
	client *weaviate.Client
	cols   vector.Collections
}

func NewStore(client *weaviate.Client, cols vector.Collections) *Store {
	return &Store{client: client, cols: cols}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client), s.cols)
}

// UpsertChunks writes chunk/vector pairs in one batch. Object ids are
// derived from chunk ids, so the batch PUT replaces prior entries with the
// same id (last write wins).
func (s *Store) UpsertChunks(ctx context.Context, chunks []rag.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(chunks))
	for _, c := range chunks {
		objects = append(objects, &models.Object{
			ID:    strfmt.UUID(uuid.NewSHA1(chunkNamespace, []byte(c.ID)).String()),
			Class: s.cols.Chunk,
			Properties: map[string]interface{}{
				"chunkId":    c.ID,
				"content":    c.Text,
				"sourceFile": c.Metadata.SourceFile,
				"chunkIndex": c.Metadata.ChunkIndex,
			},
			Vector: models.C11yVector(c.Vector),
		})
	}

	res, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, r := range res {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch upsert error: %s", r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// QueryNearest returns up to k nearest chunks for the query vector,
// best-first by cosine distance.
func (s *Store) QueryNearest(ctx context.Context, vec []float32, k int) ([]rag.Candidate, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "chunkId"},
		{Name: "content"},
		{Name: "sourceFile"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(s.cols.Chunk).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var candidates []rag.Candidate
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	rows, ok := data[s.cols.Chunk].([]interface{})
	if !ok {
		return nil, nil
	}

	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		var c rag.Candidate
		if id, ok := props["chunkId"].(string); ok {
			c.ID = id
		}
		if content, ok := props["content"].(string); ok {
			c.Text = content
		}
		if sourceFile, ok := props["sourceFile"].(string); ok {
			c.SourceFile = sourceFile
		}
		if idx, ok := props["chunkIndex"].(float64); ok {
			c.ChunkIndex = int(idx)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if dist, ok := additional["distance"].(float64); ok {
				d := float32(dist)
				c.Distance = &d
			}
		}

		candidates = append(candidates, c)
	}

	// Weaviate already orders nearVector results by distance, but the
	// contract is ours to keep: sort best-first whenever distances exist.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Distance == nil || candidates[j].Distance == nil {
			return false
		}
		return *candidates[i].Distance < *candidates[j].Distance
	})

	return candidates, nil
}
