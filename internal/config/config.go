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

// Config holds the lawdex service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Vectorstore VectorstoreConfig `yaml:"vectorstore"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Completion  CompletionConfig  `yaml:"completion"`
	Cache       CacheConfig       `yaml:"cache"`
	Ask         AskConfig         `yaml:"ask"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// VectorstoreConfig holds on-disk collection settings.
type VectorstoreConfig struct {
	Path        string   `yaml:"path"`
	Collections []string `yaml:"collections"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// CompletionConfig holds text-completion provider settings.
type CompletionConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// CacheConfig holds the optional Redis embedding cache settings. An empty
// addrs list disables the cache.
type CacheConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
	TTLSec    int      `yaml:"ttl_sec"` // 0 = no expiry
}

// AskConfig holds retrieval tuning for the question-answering feature.
type AskConfig struct {
	MinSimilarity float32 `yaml:"min_similarity"`
	TopK          int     `yaml:"top_k"`
}

// defaultCollections is the corpus set served when the config omits one.
var defaultCollections = []string{
	"press_release", "all", "law", "panli", "written", "internet", "guidance",
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		// Completion calls sit on the request path, so this is generous.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Vectorstore.Path == "" {
		c.Vectorstore.Path = "data/vectorstores"
	}
	if len(c.Vectorstore.Collections) == 0 {
		c.Vectorstore.Collections = append([]string(nil), defaultCollections...)
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "gpt-4o-mini"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "lawdex:"
	}
	if c.Ask.MinSimilarity == 0 {
		c.Ask.MinSimilarity = 0.35
	}
	if c.Ask.TopK <= 0 {
		c.Ask.TopK = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required")
	}
	if c.Ask.MinSimilarity < -1 || c.Ask.MinSimilarity > 1 {
		return fmt.Errorf("ask.min_similarity must be within [-1, 1], got %g", c.Ask.MinSimilarity)
	}
	seen := make(map[string]struct{}, len(c.Vectorstore.Collections))
	for _, name := range c.Vectorstore.Collections {
		if name == "" {
			return fmt.Errorf("vectorstore.collections contains an empty name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("vectorstore.collections lists %q twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// IndexPath returns the vectors file path for a collection.
func (c *VectorstoreConfig) IndexPath(name string) string {
	return filepath.Join(c.Path, name+".vectors")
}

// MetadataPath returns the metadata file path for a collection.
func (c *VectorstoreConfig) MetadataPath(name string) string {
	return filepath.Join(c.Path, name+".meta.json")
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
