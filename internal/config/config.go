package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skald-io/rankfuse/internal/domain"
)

// Env variables holding the two required secrets. Their absence is a
// configuration error, never a defaulted value.
const (
	EnvMongoURI        = "MONGODB_CONNECTION_URI"
	EnvEmbeddingAPIKey = "AZURE_OPENAI_API_KEY"
)

// Config holds the rankfuse configuration.
type Config struct {
	Mongo     MongoConfig     `yaml:"mongo"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MongoConfig holds Atlas connection settings.
type MongoConfig struct {
	URI               string `yaml:"uri"`
	Database          string `yaml:"database"`
	Collection        string `yaml:"collection"`
	ConnectTimeoutSec int    `yaml:"connect_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
// Provider "azure" talks to an Azure OpenAI deployment; "openai" talks to
// any OpenAI-compatible endpoint via base_url.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	APIVersion string `yaml:"api_version"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// CacheConfig holds the optional Redis embedding cache settings.
// An empty addrs list disables the cache.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// SearchConfig holds index names and composite query parameters.
type SearchConfig struct {
	TextIndex   string   `yaml:"text_index"`
	VectorIndex string   `yaml:"vector_index"`
	TextFields  []string `yaml:"text_fields"`

	NumCandidates int `yaml:"num_candidates"`
	PipelineLimit int `yaml:"pipeline_limit"`
	Limit         int `yaml:"limit"`

	VectorWeight float64 `yaml:"vector_weight"`
	TextWeight   float64 `yaml:"text_weight"`

	IndexTimeoutSec int `yaml:"index_timeout_sec"`
	PollIntervalSec int `yaml:"poll_interval_sec"`
}

// HTTPConfig holds serve-mode settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads configuration from config/<env>.yaml. A missing file is not an
// error: the demo then runs on defaults plus the two env secrets. Secrets in
// the file are injected via ${VAR} expansion, never committed literally.
func Load(env string) (Config, error) {
	var cfg Config

	configPath := filepath.Join("config", fmt.Sprintf("%s.yaml", env))
	data, err := os.ReadFile(filepath.Clean(configPath))
	switch {
	case err == nil:
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %v: %w", configPath, err, domain.ErrConfiguration)
		}
	case os.IsNotExist(err):
		// defaults-only run
	default:
		return Config{}, fmt.Errorf("read config %s: %v: %w", configPath, err, domain.ErrConfiguration)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values. The two secrets fall
// back to their environment variables so a file-less run still works.
func (c *Config) ApplyDefaults() {
	if c.Mongo.URI == "" {
		c.Mongo.URI = os.Getenv(EnvMongoURI)
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "hybrid_search_db"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "movies"
	}
	if c.Mongo.ConnectTimeoutSec <= 0 {
		c.Mongo.ConnectTimeoutSec = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "azure"
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = os.Getenv(EnvEmbeddingAPIKey)
	}
	if c.Embedding.APIVersion == "" {
		c.Embedding.APIVersion = "2024-02-01"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}

	if c.Search.TextIndex == "" {
		c.Search.TextIndex = "movies_text_index"
	}
	if c.Search.VectorIndex == "" {
		c.Search.VectorIndex = "movies_vector_index"
	}
	if len(c.Search.TextFields) == 0 {
		c.Search.TextFields = []string{"title", "plot"}
	}
	if c.Search.NumCandidates <= 0 {
		c.Search.NumCandidates = domain.DefaultNumCandidates
	}
	if c.Search.PipelineLimit <= 0 {
		c.Search.PipelineLimit = domain.DefaultPipelineLimit
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = domain.DefaultLimit
	}
	if c.Search.VectorWeight == 0 && c.Search.TextWeight == 0 {
		c.Search.VectorWeight = 0.7
		c.Search.TextWeight = 0.3
	}
	if c.Search.IndexTimeoutSec <= 0 {
		c.Search.IndexTimeoutSec = 300
	}
	if c.Search.PollIntervalSec <= 0 {
		c.Search.PollIntervalSec = 5
	}

	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
}

// Validate checks the configuration. It runs before any network client is
// constructed, so a missing secret aborts without a single remote call.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Mongo.URI) == "" {
		return fmt.Errorf("mongo.uri is required (set %s): %w", EnvMongoURI, domain.ErrConfiguration)
	}
	if strings.TrimSpace(c.Embedding.APIKey) == "" {
		return fmt.Errorf("embedding.api_key is required (set %s): %w", EnvEmbeddingAPIKey, domain.ErrConfiguration)
	}
	switch c.Embedding.Provider {
	case "azure":
		if c.Embedding.Endpoint == "" {
			return fmt.Errorf("embedding.endpoint is required for the azure provider: %w", domain.ErrConfiguration)
		}
	case "openai":
		// base endpoint optional, the client defaults to api.openai.com
	default:
		return fmt.Errorf("embedding.provider must be \"azure\" or \"openai\", got %q: %w",
			c.Embedding.Provider, domain.ErrConfiguration)
	}
	if c.Search.VectorWeight < 0 || c.Search.TextWeight < 0 {
		return fmt.Errorf("search weights must be non-negative: %w", domain.ErrConfiguration)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d: %w", c.HTTP.Port, domain.ErrConfiguration)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
