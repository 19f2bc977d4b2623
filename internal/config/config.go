package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"selekt/internal/sampler"
)

// SamplingConfig configures the distribution sampler.
type SamplingConfig struct {
	Temperature       float64 `yaml:"temperature"`
	TopK              int     `yaml:"top_k"`
	TopP              float64 `yaml:"top_p"`
	RepetitionPenalty float64 `yaml:"repetition_penalty"`
	// Seed makes stochastic sampling reproducible when non-zero.
	Seed int64 `yaml:"seed,omitempty"`
}

// Policy converts the config section into a sampler policy.
func (c SamplingConfig) Policy() sampler.Policy {
	return sampler.Policy{
		Temperature:       c.Temperature,
		TopK:              c.TopK,
		TopP:              c.TopP,
		RepetitionPenalty: c.RepetitionPenalty,
	}
}

// RetrieverConfig configures ranked retrieval.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// EmbedderConfig selects the demo's vectorizer implementation.
type EmbedderConfig struct {
	Type string `yaml:"type"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Sampling  SamplingConfig  `yaml:"sampling"`
	Retriever RetrieverConfig `yaml:"retriever"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/selekt/config.yaml.
// If neither exists, it writes defaults to ~/.config/selekt/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "selekt", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	policy := sampler.DefaultPolicy()
	return &AppConfig{
		Sampling: SamplingConfig{
			Temperature:       policy.Temperature,
			TopK:              policy.TopK,
			TopP:              policy.TopP,
			RepetitionPenalty: policy.RepetitionPenalty,
		},
		Retriever: RetrieverConfig{TopK: 5},
		Embedder:  EmbedderConfig{Type: "tfidf"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Sampling.Temperature == 0 && cfg.Sampling.TopP == 0 {
		// Whole section omitted; a deliberate temperature of 0 always
		// comes with an explicit top_p.
		cfg.Sampling = defaultConfig().Sampling
	}
	if cfg.Sampling.TopP == 0 {
		cfg.Sampling.TopP = 1
	}
	if cfg.Sampling.RepetitionPenalty == 0 {
		cfg.Sampling.RepetitionPenalty = 1
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 5
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
}
