// Package config loads loom's static YAML configuration and the prompt
// descriptor files that seed each Context kind.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the static configuration loaded from loom.yaml at the
// repository root (or a path given by --config).
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Retry   RetryConfig   `yaml:"retry"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	Budget  BudgetConfig  `yaml:"budget"`
}

// ModelConfig names the model identifier and the environment variable
// holding the bearer token (§6: OPENROUTER_API_KEY by default). Default,
// when set, overrides every context's descriptor default_model; when
// empty, each context uses its own descriptor's default_model.
type ModelConfig struct {
	Default   string `yaml:"default"`
	BearerEnv string `yaml:"bearer_env"`

	// TitleProvider names a github.com/maruel/genai provider (e.g.
	// "openai", "anthropic") used only to draft a commit-message summary
	// when a PROPOSE_MERGE command omits one. Empty disables the feature.
	TitleProvider string `yaml:"title_provider"`
}

// RetryConfig governs Transport's per-call retry policy (§4.D): up to
// MaxAttempts attempts, with InitialDelay backoff multiplied by Multiplier
// between attempts. Mirrors the teacher's git retry constants
// (internal/git/git.go: retryInitialDelay/retryMaxAttempts/retryMultiplier).
type RetryConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	Multiplier   float64  `yaml:"multiplier"`
}

// SandboxConfig configures the Sandbox Runner (§4.B).
type SandboxConfig struct {
	BaseImage  string   `yaml:"base_image"`
	BuildSteps []string `yaml:"build_steps,omitempty"`
	HeadLines  int      `yaml:"head_lines"`
	TailLines  int      `yaml:"tail_lines"`
}

// BudgetConfig sets the default subcontext budget in micro-units of cost,
// overridable per spawn (§4.F Budgets). Zero means unbudgeted.
type BudgetConfig struct {
	DefaultMicro int64 `yaml:"default_micro"`
}

// Duration wraps time.Duration for YAML unmarshaling from strings like
// "200ms", following the teacher's internal/config/config.go pattern.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// defaults applied when the corresponding YAML key is absent, mirroring the
// teacher's zero-value backfill in internal/config/config.go's parse().
const (
	defaultBearerEnv    = "OPENROUTER_API_KEY"
	defaultMaxAttempts  = 3
	defaultInitialDelay = 200 * time.Millisecond
	defaultMultiplier   = 2.0
	defaultBaseImage    = "ghcr.io/loomctl/sandbox-base:latest"
	defaultHeadLines    = 200
	defaultTailLines    = 200
)

// Load reads and parses a loom.yaml configuration file, backfilling unset
// fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns a Config with every field backfilled, for repositories
// that carry no loom.yaml at all.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Model.BearerEnv == "" {
		cfg.Model.BearerEnv = defaultBearerEnv
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = Duration(defaultInitialDelay)
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = defaultMultiplier
	}
	if cfg.Sandbox.BaseImage == "" {
		cfg.Sandbox.BaseImage = defaultBaseImage
	}
	if cfg.Sandbox.HeadLines == 0 {
		cfg.Sandbox.HeadLines = defaultHeadLines
	}
	if cfg.Sandbox.TailLines == 0 {
		cfg.Sandbox.TailLines = defaultTailLines
	}
}

// Validate checks required fields, mirroring the teacher's
// internal/config/config.go Validate/ValidateGates shape: accumulate every
// problem instead of stopping at the first.
func Validate(cfg *Config) []error {
	var errs []error
	if cfg.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be >= 1"))
	}
	if cfg.Sandbox.BaseImage == "" {
		errs = append(errs, fmt.Errorf("sandbox.base_image is required"))
	}
	return errs
}
