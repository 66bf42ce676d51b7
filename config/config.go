package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the team assistant.
type Config struct {
	Loader        LoaderConfig    `yaml:"loader"`
	Chunk         ChunkConfig     `yaml:"chunk"`
	Embedding     EmbeddingConfig `yaml:"embedding"`
	Retrieve      RetrieveConfig  `yaml:"retrieve"`
	Generator     GeneratorConfig `yaml:"generator"`
	Demo          DemoConfig      `yaml:"demo"`
	UsersFile     string          `yaml:"users_file"`
	DashboardFile string          `yaml:"dashboard_file"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// LoaderConfig controls which files are read from the docs directory.
type LoaderConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
	Excludes   []string `yaml:"excludes"`
}

type ChunkConfig struct {
	Size       int      `yaml:"size"`
	Overlap    int      `yaml:"overlap"`
	Separators []string `yaml:"separators,omitempty"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // "local", "openai", "hash"
	Model          string `yaml:"model"`
	ModelsDir      string `yaml:"models_dir"`
	APIKeyEnv      string `yaml:"api_key_env"`
	Dimension      int    `yaml:"dimension"`
	BatchSize      int    `yaml:"batch_size"`
	QueryCacheSize int    `yaml:"query_cache_size"`
	CachePath      string `yaml:"cache_path"` // empty disables the on-disk cache
}

type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// GeneratorConfig selects the hosted model used to answer questions.
// With no API key in the environment the assistant runs in demo mode.
type GeneratorConfig struct {
	Provider      string        `yaml:"provider"` // "anthropic", "openai", "demo"
	Model         string        `yaml:"model"`
	APIKeyEnv     string        `yaml:"api_key_env"`
	BaseURL       string        `yaml:"base_url,omitempty"`
	MaxTokens     int           `yaml:"max_tokens"`
	Temperature   float64       `yaml:"temperature"`
	Timeout       time.Duration `yaml:"timeout"`
	AssistantName string        `yaml:"assistant_name"`
	Organization  string        `yaml:"organization"`
}

// DemoConfig overrides the built-in canned answers used in demo mode.
type DemoConfig struct {
	RulesFile string `yaml:"rules_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Loader: LoaderConfig{
			Dir:        "docs",
			Extensions: []string{".txt", ".pdf", ".md", ".py", ".js", ".json", ".csv"},
			Excludes:   []string{"**/.git/**", "**/node_modules/**", "**/__pycache__/**"},
		},
		Chunk: ChunkConfig{
			Size:    500,
			Overlap: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:       "local",
			Model:          "sentence-transformers/all-MiniLM-L6-v2",
			APIKeyEnv:      "OPENAI_API_KEY",
			Dimension:      384,
			BatchSize:      32,
			QueryCacheSize: 256,
		},
		Retrieve: RetrieveConfig{
			TopK: 3,
		},
		Generator: GeneratorConfig{
			Provider:      "anthropic",
			Model:         "claude-3-5-haiku-20241022",
			APIKeyEnv:     "ANTHROPIC_API_KEY",
			MaxTokens:     800,
			Temperature:   0.3,
			Timeout:       30 * time.Second,
			AssistantName: "LoyaltyAI",
			Organization:  "Optum Loyalty",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for teamassist.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "teamassist.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".teamassist", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Chunk.Size <= 0 {
		errs = append(errs, fmt.Errorf("chunk.size must be positive, got %d", c.Chunk.Size))
	}
	if c.Chunk.Overlap <= 0 || c.Chunk.Overlap >= c.Chunk.Size {
		errs = append(errs, fmt.Errorf("chunk.overlap must be in (0, %d), got %d", c.Chunk.Size, c.Chunk.Overlap))
	}
	if c.Retrieve.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK))
	}
	if c.Embedding.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize))
	}
	switch strings.ToLower(c.Embedding.Provider) {
	case "local", "openai", "hash":
	default:
		errs = append(errs, fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider))
	}
	switch strings.ToLower(c.Generator.Provider) {
	case "anthropic", "openai", "demo":
	default:
		errs = append(errs, fmt.Errorf("unknown generator.provider %q", c.Generator.Provider))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// APIKey returns the generator key from the environment, empty when unset.
func (g GeneratorConfig) APIKey() string {
	if g.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(g.APIKeyEnv))
}

func (e EmbeddingConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(e.APIKeyEnv))
}

// ResolvePath makes p absolute relative to base unless it already is.
func ResolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
