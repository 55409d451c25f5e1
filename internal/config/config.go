package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is the fatal startup condition for a missing credential.
var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY: set OPENAI_API_KEY in the environment and restart the service")

const apiKeyEnv = "OPENAI_API_KEY"

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	OpenAI struct {
		Model  string `yaml:"model"`
		APIKey string `yaml:"-"`
	} `yaml:"openai"`

	Analysis struct {
		PreviewRows int `yaml:"previewRows"`
	} `yaml:"analysis"`
}

// Load reads the optional config.yaml and the required credential from the
// environment. A missing file falls back to defaults; a missing credential is
// a fatal startup condition.
func Load(path string) (*Config, error) {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.OpenAI.Model = "gpt-4o-mini"
	cfg.Analysis.PreviewRows = 20

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, err
	}

	cfg.OpenAI.APIKey = os.Getenv(apiKeyEnv)
	if cfg.OpenAI.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &cfg, nil
}
