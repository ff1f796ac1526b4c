package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"farmtrace/assistant/internal/config"
)

func TestLoadConfig(t *testing.T) {
	// Set env var directly to test envconfig logic
	os.Setenv("WEAVIATE_HOST", "test-host:8080")
	defer os.Unsetenv("WEAVIATE_HOST")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "test-host:8080", cfg.WeaviateHost)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "AgriResearchChunk", cfg.ChunkCollection)
	assert.Equal(t, "AgriConcept", cfg.ConceptCollection)
	assert.Equal(t, "AgriEdge", cfg.EdgeCollection)
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
	assert.Equal(t, "gemini-2.0-flash", cfg.GenerationModel)
	assert.Equal(t, 8, cfg.TopK)
	assert.Equal(t, 2000, cfg.MaxChunkChars)
	assert.InDelta(t, 0.2, cfg.MinRelevance, 0.001)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	content := []byte("GENERATION_MODEL=loaded-from-file")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "loaded-from-file", cfg.GenerationModel)
}

func TestLoadConfig_Toggles(t *testing.T) {
	os.Setenv("ENABLE_EMBED_WORKER", "true")
	os.Setenv("TOP_K", "3")
	defer os.Unsetenv("ENABLE_EMBED_WORKER")
	defer os.Unsetenv("TOP_K")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.True(t, cfg.EnableEmbedWorker)
	assert.Equal(t, 3, cfg.TopK)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  config.Config
		wantErr bool
	}{
		{
			name: "Valid Config",
			config: config.Config{
				WeaviateHost:    "localhost:8080",
				ChunkCollection: "AgriResearchChunk",
				TopK:            8,
				MaxChunkChars:   2000,
			},
		},
		{
			name: "Missing Weaviate Host",
			config: config.Config{
				ChunkCollection: "AgriResearchChunk",
				TopK:            8,
				MaxChunkChars:   2000,
			},
			wantErr: true,
		},
		{
			name: "Missing Collection",
			config: config.Config{
				WeaviateHost:  "localhost:8080",
				TopK:          8,
				MaxChunkChars: 2000,
			},
			wantErr: true,
		},
		{
			name: "Zero TopK",
			config: config.Config{
				WeaviateHost:    "localhost:8080",
				ChunkCollection: "AgriResearchChunk",
				MaxChunkChars:   2000,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrMissingRequired)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
