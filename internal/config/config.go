package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Collection (class) names. Concept and edge collections are declared
	// in the schema for future graph data; retrieval only reads chunks.
	ChunkCollection   string `envconfig:"CHUNK_COLLECTION" default:"AgriResearchChunk"`
	ConceptCollection string `envconfig:"CONCEPT_COLLECTION" default:"AgriConcept"`
	EdgeCollection    string `envconfig:"EDGE_COLLECTION" default:"AgriEdge"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-2.0-flash"`

	TopK int `envconfig:"TOP_K" default:"8"`
	// MinRelevance is recognized but not applied by the current selection
	// logic, which always keeps the single best candidate.
	MinRelevance  float32 `envconfig:"MIN_RELEVANCE" default:"0.2"`
	MaxChunkChars int     `envconfig:"MAX_CHUNK_CHARS" default:"2000"`
	ResearchDir   string  `envconfig:"RESEARCH_DIR" default:"./research_papers"`

	NSQDHost          string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP          string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`
	NSQLookupd        string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	EnableEmbedWorker bool   `envconfig:"ENABLE_EMBED_WORKER" default:"false"`

	ServerPort int `envconfig:"SERVER_PORT" default:"8081"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.WeaviateHost == "" {
		return fmt.Errorf("%w: WEAVIATE_HOST", ErrMissingRequired)
	}
	if c.ChunkCollection == "" {
		return fmt.Errorf("%w: CHUNK_COLLECTION", ErrMissingRequired)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: TOP_K", ErrMissingRequired)
	}
	if c.MaxChunkChars <= 0 {
		return fmt.Errorf("%w: MAX_CHUNK_CHARS", ErrMissingRequired)
	}
	return nil
}
