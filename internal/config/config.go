// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//
//  1. Environment variables (SAHAYI_* — runtime override)
//  2. Config file (~/.sahayi/config.yaml)
//  3. Default values
//
// The bare GEMINI_API_KEY variable is also honored so the service works
// with the key exported the way the Gemini docs suggest.
//
// Sensitive fields (API key, database password) are never logged.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates the Gemini API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidEmbedderDimension indicates an unusable vector dimensionality.
	ErrInvalidEmbedderDimension = errors.New("invalid embedder dimension")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidServerAddr indicates the HTTP listen address is invalid.
	ErrInvalidServerAddr = errors.New("invalid server address")
)

const (
	// DefaultEmbedderModel truncates its output to DefaultEmbedderDimension
	// via OutputDimensionality; the pgvector schema uses the same size.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultEmbedderDimension matches vector(768) in db/migrations.
	DefaultEmbedderDimension int32 = 768
)

// Config stores application configuration.
type Config struct {
	// Gemini
	GeminiAPIKey      string   `mapstructure:"gemini_api_key"`
	EmbedderModel     string   `mapstructure:"embedder_model"`
	EmbedderDimension int32    `mapstructure:"embedder_dimension"`
	PreferredModels   []string `mapstructure:"preferred_models"` // empty = built-in preference list

	// PostgreSQL (individually, or together via DATABASE_URL)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// HTTP server
	ServerAddr string `mapstructure:"server_addr"`
	RateBurst  int    `mapstructure:"rate_burst"` // per-IP token bucket burst, 0 = default

	// Corpus bootstrap: JSONL file ingested on demand (sahayi ingest) and
	// at serve startup when the store is empty. Empty disables bootstrap.
	CorpusPath string `mapstructure:"corpus_path"`

	// Tracing (OTLP HTTP agent endpoint; empty disables)
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
	Environment  string `mapstructure:"environment"`

	// Logging
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load reads configuration from all sources.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SAHAYI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, ".sahayi"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Convention from the Gemini docs: a bare GEMINI_API_KEY works too.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("embedder_dimension", DefaultEmbedderDimension)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "sahayi")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_dbname", "sahayi")
	v.SetDefault("postgres_sslmode", "disable")

	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("corpus_path", "documents.jsonl")

	v.SetDefault("service_name", "sahayi")
	v.SetDefault("log_level", "info")
}
