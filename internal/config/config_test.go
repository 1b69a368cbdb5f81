package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Gemini: GeminiConfig{APIKeys: []string{"key-1"}},
		Paths: PathsConfig{
			Input:  "data/input",
			Output: "data/output",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing api keys",
			mutate:  func(c *Config) { c.Gemini.APIKeys = []string{" ", ""} },
			wantErr: true,
		},
		{
			name:    "missing paths",
			mutate:  func(c *Config) { c.Paths = PathsConfig{} },
			wantErr: true,
		},
		{
			name:    "overlap not smaller than batch",
			mutate:  func(c *Config) { c.Chunking = ChunkingConfig{BatchSizeTokens: 100, OverlapSizeTokens: Ptr(100)} },
			wantErr: true,
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Retry.Mode = "turbo" },
			wantErr: true,
		},
		{
			name:    "unknown output format",
			mutate:  func(c *Config) { c.Output.Formats = []string{"pdf"} },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Retry.MaxRetries = Ptr(-1) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8000, cfg.Chunking.BatchSizeTokens)
	assert.Equal(t, 200, cfg.OverlapSize())
	assert.Equal(t, 3, cfg.RetryLimit())
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimitDelay())
	assert.Equal(t, 60*time.Second, cfg.Retry.Timeout)
	assert.Equal(t, "sequential", cfg.Retry.Mode)
	assert.Equal(t, 3, cfg.Retry.Parallelism)
	assert.True(t, cfg.AutoContinue())
	assert.Equal(t, []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-1.5-flash-8b"}, cfg.Backends())
	assert.Equal(t, float32(0.7), cfg.Gemini.Temperature)
	assert.Equal(t, int32(2048), cfg.Gemini.MaxOutputTokens)
	assert.Equal(t, []string{"md"}, cfg.Output.Formats)
	assert.Equal(t, "data/archived", cfg.Paths.Archived)
	assert.Equal(t, 2, cfg.Performance.MaxConcurrent)
}

func TestValidateKeepsExplicitZeros(t *testing.T) {
	cfg := validConfig()
	cfg.Chunking = ChunkingConfig{BatchSizeTokens: 100, OverlapSizeTokens: Ptr(0)}
	cfg.Retry.MaxRetries = Ptr(0)
	cfg.Retry.RateLimitDelay = Ptr(time.Duration(0))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0, cfg.OverlapSize())
	assert.Equal(t, 0, cfg.RetryLimit())
	assert.Equal(t, time.Duration(0), cfg.RateLimitDelay())
}

func TestLoadExplicitZeros(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
gemini:
  api_keys: ["key"]
chunking:
  batch_size_tokens: 100
  overlap_size_tokens: 0
retry:
  max_retries: 0
  rate_limit_delay: 0s
paths:
  input: "data/input"
  output: "data/output"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.OverlapSize())
	assert.Equal(t, 0, cfg.RetryLimit())
	assert.Equal(t, time.Duration(0), cfg.RateLimitDelay())
}

func TestBackendsDeduplicates(t *testing.T) {
	cfg := Config{Gemini: GeminiConfig{
		PrimaryModel:   "a",
		FallbackModels: []string{"b", "a", " ", "c"},
	}}
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Backends())
}

func TestLoad(t *testing.T) {
	t.Setenv("CHUNKFLOW_TEST_KEY", "secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
gemini:
  api_keys: ["${CHUNKFLOW_TEST_KEY}", "backup"]
  primary_model: "gemini-2.0-flash"
  fallback_models: []

chunking:
  batch_size_tokens: 4000
  overlap_size_tokens: 100
  structure_aware: true

retry:
  max_retries: 2
  base_delay: 250ms
  timeout: 30s
  mode: parallel
  parallelism: 4
  auto_continue_on_failure: false

output:
  formats: [md, docx]
  gap_marker: "[...]"

paths:
  input: "data/input"
  output: "data/output"

logging:
  level: "debug"
  format: "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"secret", "backup"}, cfg.Gemini.APIKeys)
	assert.Equal(t, []string{"gemini-2.0-flash"}, cfg.Backends())
	assert.Equal(t, 4000, cfg.Chunking.BatchSizeTokens)
	assert.Equal(t, 100, cfg.OverlapSize())
	assert.Equal(t, 2, cfg.RetryLimit())
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimitDelay())
	assert.True(t, cfg.Chunking.StructureAware)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.Timeout)
	assert.Equal(t, "parallel", cfg.Retry.Mode)
	assert.Equal(t, 4, cfg.Retry.Parallelism)
	assert.False(t, cfg.AutoContinue())
	assert.Equal(t, []string{"md", "docx"}, cfg.Output.Formats)
	assert.Equal(t, "[...]", cfg.Output.GapMarker)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gemini: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
