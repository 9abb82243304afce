package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"svcsearch/internal/domain"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the embedding provider.
// Dimensions is the vector dimensionality the provider and the index
// schema agree on; both sides validate against it.
type EmbedderConfig struct {
	Type       string                `yaml:"type"`
	Dimensions int                   `yaml:"dimensions"`
	OpenAI     *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// QdrantIndexConfig contains connection details for a Qdrant vector index.
type QdrantIndexConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChromemIndexConfig configures the embedded chromem index. An empty Path
// keeps the index in memory only.
type ChromemIndexConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig selects and configures the vector index implementation.
// Name is the index (collection) name shared by all backends.
type IndexConfig struct {
	Type    string              `yaml:"type"`
	Name    string              `yaml:"name"`
	Qdrant  *QdrantIndexConfig  `yaml:"qdrant,omitempty"`
	Chromem *ChromemIndexConfig `yaml:"chromem,omitempty"`
}

// SearchConfig configures the query side.
type SearchConfig struct {
	TopK int    `yaml:"top_k"`
	UI   string `yaml:"ui"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Index    IndexConfig    `yaml:"index"`
	Search   SearchConfig   `yaml:"search"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/svcsearch/config.yaml.
// If neither exists, defaults are returned without writing anything.
func LoadDefault() (*AppConfig, error) {
	if _, err := os.Stat("config.yaml"); err == nil {
		return Load("config.yaml")
	}
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".config", "svcsearch", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return Load(userPath)
		}
	}
	return defaultConfig(), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "local", Dimensions: 1536},
		Index:    IndexConfig{Type: "chromem", Name: "services"},
		Search:   SearchConfig{TopK: 3, UI: "plain"},
	}
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "local"
	}
	if cfg.Embedder.Dimensions == 0 {
		cfg.Embedder.Dimensions = 1536
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "chromem"
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = "services"
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 3
	}
	if cfg.Search.UI == "" {
		cfg.Search.UI = "plain"
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Embedder.Dimensions < 0 {
		return fmt.Errorf("%w: embedder dimensions must be positive", domain.ErrConfiguration)
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI == nil {
		return fmt.Errorf("%w: openai embedder config missing", domain.ErrConfiguration)
	}
	if cfg.Index.Type == "qdrant" && (cfg.Index.Qdrant == nil || cfg.Index.Qdrant.URL == "") {
		return fmt.Errorf("%w: qdrant index config missing", domain.ErrConfiguration)
	}
	if cfg.Search.TopK < 0 {
		return fmt.Errorf("%w: top_k must be positive", domain.ErrConfiguration)
	}
	return nil
}
