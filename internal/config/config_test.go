package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingAPIKeyIsFatal(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 20, cfg.Analysis.PreviewRows)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  port: 9000\nopenai:\n  model: gpt-4o\nanalysis:\n  previewRows: 5\n",
	), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 5, cfg.Analysis.PreviewRows)
}

func TestLoad_BadYAML(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
