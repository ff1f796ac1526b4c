package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// Collections names the classes this system owns. Concept and Edge are
// reserved for future graph data; only Chunk is read by retrieval.
type Collections struct {
	Chunk   string
	Concept string
	Edge    string
}

// EnsureSchema checks that every collection class exists and creates (or
// extends with missing properties) the ones that do not. All classes use
// vectorizer "none": vectors are computed by the embedding backend and
// supplied on insert.
func EnsureSchema(ctx context.Context, client SchemaClient, cols Collections) error {
	classes := []struct {
		name        string
		description string
		properties  []*models.Property
	}{
		{
			name:        cols.Chunk,
			description: "A chunk of an agricultural research document",
			properties: []*models.Property{
				{Name: "content", DataType: []string{"text"}},
				{Name: "chunkId", DataType: []string{"string"}}, // deterministic id (exact match)
				{Name: "sourceFile", DataType: []string{"string"}},
				{Name: "chunkIndex", DataType: []string{"int"}},
			},
		},
		{
			name:        cols.Concept,
			description: "An agricultural concept node (reserved)",
			properties: []*models.Property{
				{Name: "label", DataType: []string{"text"}},
			},
		},
		{
			name:        cols.Edge,
			description: "A relation between concepts (reserved)",
			properties: []*models.Property{
				{Name: "subject", DataType: []string{"string"}},
				{Name: "predicate", DataType: []string{"string"}},
				{Name: "object", DataType: []string{"string"}},
			},
		},
	}

	for _, c := range classes {
		if c.name == "" {
			continue
		}
		if err := ensureClass(ctx, client, c.name, c.description, c.properties); err != nil {
			return err
		}
	}
	return nil
}

func ensureClass(ctx context.Context, client SchemaClient, name, description string, properties []*models.Property) error {
	exists, err := client.ClassExists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		class := &models.Class{
			Class:       name,
			Description: description,
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, name)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, name, p); err != nil {
				return err
			}
		}
	}

	return nil
}
