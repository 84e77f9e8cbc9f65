package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1200
	// MinChunkSize is the floor below which chunk size is clamped.
	MinChunkSize = 100
	// defaultOverlapRatio is used when no overlap is configured, or when the
	// configured overlap is not smaller than the chunk size.
	defaultOverlapRatio = 0.15
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	// ChunkSize is the maximum characters per chunk; ChunkOverlap is the
	// character overlap between adjacent chunks in the recursive splitter.
	// -1 means "not set": ChunkOverlap is then derived as 15% of ChunkSize.
	// Resolved once at startup; the chunker and embedding service receive
	// the sanitized values by injection.
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1200"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"-1"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("INKSTAND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.sanitizeChunking()

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// sanitizeChunking enforces the chunking bounds: size has a floor of 100,
// overlap must be non-negative and strictly smaller than size. Out-of-range
// values are clamped with a warning rather than rejected.
func (c *Config) sanitizeChunking() {
	if c.ChunkSize < MinChunkSize {
		log.Warn().
			Int("chunk_size", c.ChunkSize).
			Int("minimum", MinChunkSize).
			Msg("chunk size too small, clamping to minimum")
		c.ChunkSize = MinChunkSize
	}

	switch {
	case c.ChunkOverlap == -1:
		// Not configured: default to 15% of chunk size.
		c.ChunkOverlap = int(float64(c.ChunkSize) * defaultOverlapRatio)
	case c.ChunkOverlap < 0:
		log.Warn().
			Int("chunk_overlap", c.ChunkOverlap).
			Msg("chunk overlap cannot be negative, using 0")
		c.ChunkOverlap = 0
	case c.ChunkOverlap >= c.ChunkSize:
		recomputed := int(float64(c.ChunkSize) * defaultOverlapRatio)
		log.Warn().
			Int("chunk_overlap", c.ChunkOverlap).
			Int("chunk_size", c.ChunkSize).
			Int("recomputed", recomputed).
			Msg("chunk overlap must be smaller than chunk size, using 15% of chunk size")
		c.ChunkOverlap = recomputed
	}
}
