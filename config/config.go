// Package config loads the latentpca run configuration from a YAML file, applies
// defaults for anything left unset, and lets environment variables override the
// paths and credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory when no
// explicit path is given.
const DefaultPath = "latentpca.yaml"

// Environment variables that override file values.
const (
	EnvInput        = "LATENTPCA_INPUT"
	EnvOutput       = "LATENTPCA_OUTPUT"
	EnvQdrantAPIKey = "QDRANT_API_KEY"
	EnvHFToken      = "HF_TOKEN"
)

// Source types.
const (
	SourceFile        = "file"
	SourceQdrant      = "qdrant"
	SourceHuggingFace = "huggingface"
)

// Display modes.
const (
	DisplayTUI  = "tui"
	DisplayNone = "none"
)

// QdrantConfig contains connection details for reading embeddings from a Qdrant
// collection and, optionally, writing the reduced coordinates back as payload.
type QdrantConfig struct {
	Address     string `yaml:"address"`
	APIKey      string `yaml:"api_key"`
	TLS         bool   `yaml:"tls"`
	Collection  string `yaml:"collection"`
	VectorName  string `yaml:"vector_name"`
	PageSize    int    `yaml:"page_size"`
	WriteBack   bool   `yaml:"write_back"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// HuggingFaceConfig selects a dataset split served by the Dataset Viewer API.
type HuggingFaceConfig struct {
	BaseURL string `yaml:"base_url"`
	Dataset string `yaml:"dataset"`
	Config  string `yaml:"config"`
	Split   string `yaml:"split"`
	Token   string `yaml:"token"`
	MaxRows int    `yaml:"max_rows"`
}

// SourceConfig selects where the input table comes from.
type SourceConfig struct {
	Type        string             `yaml:"type"`
	Qdrant      *QdrantConfig      `yaml:"qdrant,omitempty"`
	HuggingFace *HuggingFaceConfig `yaml:"huggingface,omitempty"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// Config is the root configuration structure.
type Config struct {
	Input           string       `yaml:"input"`
	Output          string       `yaml:"output"`
	EmbeddingColumn string       `yaml:"embedding_column"`
	LabelColumn     string       `yaml:"label_column"`
	ComponentPrefix string       `yaml:"component_prefix"`
	Threshold       float64      `yaml:"threshold"`
	Display         string       `yaml:"display"`
	Plot            string       `yaml:"plot"`
	Report          string       `yaml:"report"`
	Source          SourceConfig `yaml:"source"`
	Log             LogConfig    `yaml:"log"`
}

// Load reads a config from path. A missing file yields the defaults. Environment
// overrides are applied in both cases.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			applyEnvironment(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	applyEnvironment(&cfg)
	return &cfg, nil
}

// LoadDefault loads explicitPath when it is set, where a missing file is an error.
// Otherwise it tries DefaultPath in the working directory and falls back to the
// built-in defaults. The returned path is empty when no file was read.
func LoadDefault(explicitPath string) (*Config, string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, "", fmt.Errorf("config %s: %w", explicitPath, err)
		}
		cfg, err := Load(explicitPath)
		return cfg, explicitPath, err
	}

	if _, err := os.Stat(DefaultPath); err == nil {
		cfg, err := Load(DefaultPath)
		return cfg, DefaultPath, err
	}

	cfg := Default()
	applyEnvironment(cfg)
	return cfg, "", nil
}

// Save writes the config to the given path, creating directories as needed. Secrets
// that came from QDRANT_API_KEY or HF_TOKEN are left out of the file.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	saved := *cfg
	if qdrantConfig := cfg.Source.Qdrant; qdrantConfig != nil && qdrantConfig.APIKey != "" && qdrantConfig.APIKey == os.Getenv(EnvQdrantAPIKey) {
		withoutKey := *qdrantConfig
		withoutKey.APIKey = ""
		saved.Source.Qdrant = &withoutKey
	}
	if huggingFaceConfig := cfg.Source.HuggingFace; huggingFaceConfig != nil && huggingFaceConfig.Token != "" && huggingFaceConfig.Token == os.Getenv(EnvHFToken) {
		withoutToken := *huggingFaceConfig
		withoutToken.Token = ""
		saved.Source.HuggingFace = &withoutToken
	}

	data, err := yaml.Marshal(&saved)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration: read dataset/eSol_Test.json, keep 95%
// of the variance, and write dataset/eSol_Test_PCA.json.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Input == "" {
		cfg.Input = filepath.Join("dataset", "eSol_Test.json")
	}
	if cfg.Output == "" {
		cfg.Output = filepath.Join("dataset", "eSol_Test_PCA.json")
	}
	if cfg.EmbeddingColumn == "" {
		cfg.EmbeddingColumn = "embedding"
	}
	if cfg.ComponentPrefix == "" {
		cfg.ComponentPrefix = "PCA_"
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 0.95
	}
	if cfg.Display == "" {
		cfg.Display = DisplayTUI
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = SourceFile
	}
	if cfg.Source.Type == SourceQdrant {
		if cfg.Source.Qdrant == nil {
			cfg.Source.Qdrant = &QdrantConfig{}
		}
		if cfg.Source.Qdrant.Address == "" {
			cfg.Source.Qdrant.Address = "localhost:6334"
		}
		if cfg.Source.Qdrant.Collection == "" {
			cfg.Source.Qdrant.Collection = "embeddings"
		}
		if cfg.Source.Qdrant.PageSize == 0 {
			cfg.Source.Qdrant.PageSize = 256
		}
		if cfg.Source.Qdrant.TimeoutSecs == 0 {
			cfg.Source.Qdrant.TimeoutSecs = 30
		}
	}
	if cfg.Source.Type == SourceHuggingFace {
		if cfg.Source.HuggingFace == nil {
			cfg.Source.HuggingFace = &HuggingFaceConfig{}
		}
		if cfg.Source.HuggingFace.BaseURL == "" {
			cfg.Source.HuggingFace.BaseURL = "https://datasets-server.huggingface.co"
		}
		if cfg.Source.HuggingFace.Config == "" {
			cfg.Source.HuggingFace.Config = "default"
		}
		if cfg.Source.HuggingFace.Split == "" {
			cfg.Source.HuggingFace.Split = "train"
		}
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnvironment(cfg *Config) {
	if value := os.Getenv(EnvInput); value != "" {
		cfg.Input = value
	}
	if value := os.Getenv(EnvOutput); value != "" {
		cfg.Output = value
	}
	if value := os.Getenv(EnvQdrantAPIKey); value != "" && cfg.Source.Qdrant != nil {
		cfg.Source.Qdrant.APIKey = value
	}
	if value := os.Getenv(EnvHFToken); value != "" && cfg.Source.HuggingFace != nil {
		cfg.Source.HuggingFace.Token = value
	}
}

// Validate reports settings that cannot produce a run.
func (cfg *Config) Validate() error {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", cfg.Threshold)
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return errors.New("output path is empty")
	}

	switch cfg.Display {
	case DisplayTUI, DisplayNone:
	default:
		return fmt.Errorf("unknown display %q", cfg.Display)
	}

	switch cfg.Source.Type {
	case SourceFile:
		if strings.TrimSpace(cfg.Input) == "" {
			return errors.New("input path is empty")
		}
	case SourceQdrant:
		if cfg.Source.Qdrant == nil || cfg.Source.Qdrant.Collection == "" {
			return errors.New("qdrant source needs a collection")
		}
	case SourceHuggingFace:
		if cfg.Source.HuggingFace == nil || cfg.Source.HuggingFace.Dataset == "" {
			return errors.New("huggingface source needs a dataset")
		}
	default:
		return fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
	return nil
}
