package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultOverlapSize    = 200
	defaultMaxRetries     = 3
	defaultRateLimitDelay = 500 * time.Millisecond
)

// Ptr returns a pointer to v, for optional config fields.
func Ptr[T any](v T) *T {
	return &v
}

type Config struct {
	Gemini      GeminiConfig      `yaml:"gemini"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Retry       RetryConfig       `yaml:"retry"`
	Prompt      PromptConfig      `yaml:"prompt"`
	Output      OutputConfig      `yaml:"output"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

type GeminiConfig struct {
	APIKeys         []string `yaml:"api_keys"`
	PrimaryModel    string   `yaml:"primary_model"`
	FallbackModels  []string `yaml:"fallback_models"`
	Temperature     float32  `yaml:"temperature"`
	TopP            float32  `yaml:"top_p"`
	TopK            float32  `yaml:"top_k"`
	MaxOutputTokens int32    `yaml:"max_output_tokens"`
}

// Fields where zero is a valid setting are pointers so that an absent key
// can be told apart from an explicit zero.
type ChunkingConfig struct {
	BatchSizeTokens   int  `yaml:"batch_size_tokens"`
	OverlapSizeTokens *int `yaml:"overlap_size_tokens"`
	StructureAware    bool `yaml:"structure_aware"`
}

type RetryConfig struct {
	MaxRetries     *int           `yaml:"max_retries"`
	BaseDelay      time.Duration  `yaml:"base_delay"`
	RateLimitDelay *time.Duration `yaml:"rate_limit_delay"`
	Timeout        time.Duration  `yaml:"timeout"`
	// Mode is "sequential" or "parallel".
	Mode                  string `yaml:"mode"`
	Parallelism           int    `yaml:"parallelism"`
	AutoContinueOnFailure *bool  `yaml:"auto_continue_on_failure"`
}

type PromptConfig struct {
	System    string `yaml:"system"`
	Text      string `yaml:"text"`
	Code      string `yaml:"code"`
	Table     string `yaml:"table"`
	Tone      string `yaml:"tone"`
	Verbosity string `yaml:"verbosity"`
}

type OutputConfig struct {
	// Formats lists the files written per document: md, txt, docx.
	Formats      []string `yaml:"formats"`
	GapMarker    string   `yaml:"gap_marker"`
	SSML         bool     `yaml:"ssml"`
	InsertPauses bool     `yaml:"insert_pauses"`
	Report       bool     `yaml:"report"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is "stdout" or "none".
	Exporter string `yaml:"exporter"`
}

// Load reads a YAML config file, expands ${VAR} references from the
// environment and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Backends returns the model list, primary first, without duplicates.
func (c *Config) Backends() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range append([]string{c.Gemini.PrimaryModel}, c.Gemini.FallbackModels...) {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// OverlapSize returns the overlap carried between chunks, in tokens.
func (c *Config) OverlapSize() int {
	if c.Chunking.OverlapSizeTokens == nil {
		return defaultOverlapSize
	}
	return *c.Chunking.OverlapSizeTokens
}

// RetryLimit returns how many times a backend is retried after its first attempt.
func (c *Config) RetryLimit() int {
	if c.Retry.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *c.Retry.MaxRetries
}

// RateLimitDelay returns the pause between sequential chunks or parallel groups.
func (c *Config) RateLimitDelay() time.Duration {
	if c.Retry.RateLimitDelay == nil {
		return defaultRateLimitDelay
	}
	return *c.Retry.RateLimitDelay
}

// AutoContinue reports whether a failed chunk lets a sequential run go on.
func (c *Config) AutoContinue() bool {
	return c.Retry.AutoContinueOnFailure == nil || *c.Retry.AutoContinueOnFailure
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}

	c.Gemini.APIKeys = nonEmpty(c.Gemini.APIKeys)
	if len(c.Gemini.APIKeys) == 0 {
		return fmt.Errorf("gemini.api_keys is required")
	}

	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	if c.Gemini.PrimaryModel == "" {
		c.Gemini.PrimaryModel = "gemini-1.5-flash"
	}
	if c.Gemini.FallbackModels == nil {
		c.Gemini.FallbackModels = []string{"gemini-1.5-pro", "gemini-1.5-flash-8b"}
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.7
	}
	if c.Gemini.TopP == 0 {
		c.Gemini.TopP = 0.95
	}
	if c.Gemini.TopK == 0 {
		c.Gemini.TopK = 40
	}
	if c.Gemini.MaxOutputTokens == 0 {
		c.Gemini.MaxOutputTokens = 2048
	}

	if c.Chunking.BatchSizeTokens == 0 {
		c.Chunking.BatchSizeTokens = 8000
	}
	if c.Chunking.OverlapSizeTokens == nil {
		c.Chunking.OverlapSizeTokens = Ptr(defaultOverlapSize)
	}
	if c.Chunking.BatchSizeTokens < 1 {
		return fmt.Errorf("chunking.batch_size_tokens must be positive")
	}
	if overlap := c.OverlapSize(); overlap < 0 || overlap >= c.Chunking.BatchSizeTokens {
		return fmt.Errorf("chunking.overlap_size_tokens must be in [0, batch_size_tokens)")
	}

	if c.Retry.MaxRetries == nil {
		c.Retry.MaxRetries = Ptr(defaultMaxRetries)
	}
	if c.RetryLimit() < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = time.Second
	}
	if c.Retry.RateLimitDelay == nil {
		c.Retry.RateLimitDelay = Ptr(defaultRateLimitDelay)
	}
	if c.RateLimitDelay() < 0 {
		return fmt.Errorf("retry.rate_limit_delay must not be negative")
	}
	if c.Retry.Timeout == 0 {
		c.Retry.Timeout = 60 * time.Second
	}
	if c.Retry.Mode == "" {
		c.Retry.Mode = "sequential"
	}
	if c.Retry.Mode != "sequential" && c.Retry.Mode != "parallel" {
		return fmt.Errorf("retry.mode must be sequential or parallel, got %q", c.Retry.Mode)
	}
	if c.Retry.Parallelism == 0 {
		c.Retry.Parallelism = 3
	}
	if c.Retry.Parallelism < 1 {
		return fmt.Errorf("retry.parallelism must be positive")
	}

	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{"md"}
	}
	for _, f := range c.Output.Formats {
		switch f {
		case "md", "txt", "docx":
		default:
			return fmt.Errorf("output.formats: unsupported format %q", f)
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = "stdout"
	}

	return nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
