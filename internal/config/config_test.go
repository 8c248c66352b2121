package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8470, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, []string{"dock 1", "dock 2"}, cfg.Docks.Names)
	assert.Equal(t, 10, cfg.Docks.ScanLimit)
	assert.Equal(t, 5000, cfg.Costing.DockRentalPerDay)
	assert.Len(t, cfg.Drafting.Stakeholders, 3)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
llm:
  provider: openai
  model: gpt-4o-mini
  timeout: 5s
lookup:
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout.Duration())
	assert.Equal(t, 5, cfg.Lookup.TopK)
	// Untouched sections keep defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Costing.DemurragePerDay)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CRISISD_SERVER_PORT", "7000")
	t.Setenv("CRISISD_LLM_MAX_TOKENS", "512")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad provider", func(c *Config) { c.LLM.Provider = "bedrock" }},
		{"empty model", func(c *Config) { c.LLM.Model = "" }},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
		{"zero top_k", func(c *Config) { c.Lookup.TopK = 0 }},
		{"no store path", func(c *Config) { c.Store.Path = "" }},
		{"no docks", func(c *Config) { c.Docks.Names = nil }},
		{"negative rate", func(c *Config) { c.Costing.LaborPerDay = -1 }},
		{"no stakeholders", func(c *Config) { c.Drafting.Stakeholders = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("sk-abc123")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "sk-abc123", s.Value())
	assert.True(t, s.IsSet())

	out, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(out))

	assert.False(t, Secret("").IsSet())
	assert.Equal(t, "", Secret("").String())
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("bogus")))
}
