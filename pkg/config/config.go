// Package config loads service configuration from config.yaml with
// environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for memo-mesh.
// Environment variables always override YAML values.
// Secrets (database password, LLM API key) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"3000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL with pgvector)
	Database DatabaseConfig `yaml:"database"`

	// LLM configuration for extraction and embeddings
	LLM LLMConfig `yaml:"llm"`

	// Enrichment controls the background embedding/extraction tasks
	Enrichment EnrichmentConfig `yaml:"enrichment"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"memomesh"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"memomesh"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// LLMConfig holds the OpenAI-compatible endpoint configuration used for
// both knowledge extraction and embeddings.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model          string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	EmbeddingModel string `yaml:"embedding_model" env:"LLM_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	APIKey         string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
}

// EnrichmentConfig bounds the fire-and-forget enrichment tasks.
type EnrichmentConfig struct {
	// MaxConcurrent limits how many enrichment tasks run at once.
	MaxConcurrent int `yaml:"max_concurrent" env:"ENRICHMENT_MAX_CONCURRENT" env-default:"8"`
	// TaskTimeout bounds a single embedding or extraction task.
	TaskTimeout time.Duration `yaml:"task_timeout" env:"ENRICHMENT_TASK_TIMEOUT" env-default:"30s"`
	// RatePerSecond throttles task starts. Zero disables throttling.
	RatePerSecond float64 `yaml:"rate_per_second" env:"ENRICHMENT_RATE_PER_SECOND" env-default:"0"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
