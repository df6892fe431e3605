package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the faqdex service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Grading   GradingConfig   `yaml:"grading"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Retry     RetryConfig     `yaml:"retry"`
	Settings  SettingsConfig  `yaml:"settings"`
	Assets    AssetsConfig    `yaml:"assets"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Driver string       `yaml:"driver"` // sqlite, redis, qdrant (default: sqlite)
	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
	Qdrant QdrantConfig `yaml:"qdrant"`
}

// SQLiteConfig holds settings for the embedded backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds settings for the RediSearch backend.
type RedisConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
	IndexName string   `yaml:"index_name"`
}

// QdrantConfig holds settings for the Qdrant backend.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
	UseTLS     bool   `yaml:"use_tls"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	TimeoutSec          int    `yaml:"timeout_sec"`
}

// GradingConfig holds LLM grading settings. The pro model is slower and gets
// its own, looser timeout.
type GradingConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	ProModel      string `yaml:"pro_model"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	ProTimeoutSec int    `yaml:"pro_timeout_sec"`
}

// RetrievalConfig holds the calibrated scoring thresholds.
type RetrievalConfig struct {
	MinRelevance    float64 `yaml:"min_relevance"`
	HighCutoff      float64 `yaml:"high_cutoff"`
	MediumCutoff    float64 `yaml:"medium_cutoff"`
	BotResultCount  int     `yaml:"bot_result_count"`
	AgentPoolSize   int     `yaml:"agent_pool_size"`
	AgentMinScore   float64 `yaml:"agent_min_score"`
	ConfidenceFloor float64 `yaml:"confidence_floor"`
}

// RetryConfig holds the busy-retry policy for the embedded backend.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// SettingsConfig locates the runtime-mutable bot settings file.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

// AssetsConfig holds image asset settings.
type AssetsConfig struct {
	ImageDir string `yaml:"image_dir"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
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

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "data/faqdex.db"
	}
	if c.Store.Redis.KeyPrefix == "" {
		c.Store.Redis.KeyPrefix = "faqdex:"
	}
	if c.Store.Redis.IndexName == "" {
		c.Store.Redis.IndexName = "faqdex-idx"
	}
	if c.Store.Qdrant.Port <= 0 {
		c.Store.Qdrant.Port = 6334
	}
	if c.Store.Qdrant.Collection == "" {
		c.Store.Qdrant.Collection = "faqdex"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 15
	}
	if c.Grading.TimeoutSec <= 0 {
		c.Grading.TimeoutSec = 30
	}
	if c.Grading.ProTimeoutSec <= 0 {
		c.Grading.ProTimeoutSec = 60
	}
	if c.Retrieval.MinRelevance <= 0 {
		c.Retrieval.MinRelevance = 41
	}
	if c.Retrieval.HighCutoff <= 0 {
		c.Retrieval.HighCutoff = 80
	}
	if c.Retrieval.MediumCutoff <= 0 {
		c.Retrieval.MediumCutoff = 50
	}
	if c.Retrieval.BotResultCount <= 0 {
		c.Retrieval.BotResultCount = 5
	}
	if c.Retrieval.AgentPoolSize <= 0 {
		c.Retrieval.AgentPoolSize = 20
	}
	if c.Retrieval.AgentMinScore <= 0 {
		c.Retrieval.AgentMinScore = 20
	}
	if c.Retrieval.ConfidenceFloor <= 0 {
		c.Retrieval.ConfidenceFloor = 0.3
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 10
	}
	if c.Retry.BaseDelayMS <= 0 {
		c.Retry.BaseDelayMS = 100
	}
	if c.Settings.Path == "" {
		c.Settings.Path = "data/bot_settings.json"
	}
	if c.Assets.ImageDir == "" {
		c.Assets.ImageDir = "data/images"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Store.Driver {
	case "sqlite":
		// embedded, nothing remote to check
	case "redis":
		if len(c.Store.Redis.Addrs) == 0 {
			return fmt.Errorf("store.redis.addrs is required for the redis driver")
		}
	case "qdrant":
		if c.Store.Qdrant.Host == "" {
			return fmt.Errorf("store.qdrant.host is required for the qdrant driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Grading.Model == "" {
		return fmt.Errorf("grading.model is required")
	}
	if c.Retrieval.ConfidenceFloor < 0 || c.Retrieval.ConfidenceFloor > 1 {
		return fmt.Errorf("retrieval.confidence_floor must be within [0, 1], got %g",
			c.Retrieval.ConfidenceFloor)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
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
