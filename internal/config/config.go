// Package config loads sitegen configuration from a YAML file, with .env
// files and process environment variables layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/broadcast"
	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// PipelineConfig configures the engine itself.
type PipelineConfig struct {
	VibeMode bool              `yaml:"vibe_mode"`
	Domain   string            `yaml:"domain"`
	Platform pipeline.Platform `yaml:"platform"`
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig configures where generated sites are exported.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// CommitExport initializes a git repository in the export directory and
	// commits the generated files, for git-based deploy targets.
	CommitExport bool `yaml:"commit_export"`
}

// JanitorConfig configures pruning of stale runs.
type JanitorConfig struct {
	Enabled bool          `yaml:"enabled"`
	MaxAge  time.Duration `yaml:"max_age"`
	Every   time.Duration `yaml:"every"`
}

// Config is the root sitegen configuration.
type Config struct {
	Pipeline PipelineConfig   `yaml:"pipeline"`
	Store    StoreConfig      `yaml:"store"`
	Output   OutputConfig     `yaml:"output"`
	NATS     broadcast.Config `yaml:"nats"`
	Janitor  JanitorConfig    `yaml:"janitor"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			VibeMode: false,
			Platform: pipeline.PlatformVercel,
		},
		Store:  StoreConfig{Path: "sitegen.db"},
		Output: OutputConfig{Directory: "./sites"},
		NATS:   broadcast.DefaultConfig(),
		Janitor: JanitorConfig{
			Enabled: false,
			MaxAge:  24 * time.Hour,
			Every:   time.Hour,
		},
	}
}

// Load reads the config file if it exists, then applies .env files and
// environment overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	// Existing process environment wins over .env contents.
	_ = godotenv.Load(".env", ".env.local")

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers SITEGEN_* environment variables over the file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SITEGEN_VIBE_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Pipeline.VibeMode = b
		}
	}
	if v := os.Getenv("SITEGEN_DOMAIN"); v != "" {
		cfg.Pipeline.Domain = v
	}
	if v := os.Getenv("SITEGEN_PLATFORM"); v != "" {
		cfg.Pipeline.Platform = pipeline.Platform(v)
	}
	if v := os.Getenv("SITEGEN_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SITEGEN_OUTPUT_DIR"); v != "" {
		cfg.Output.Directory = v
	}
	if v := os.Getenv("SITEGEN_NATS_URL"); v != "" {
		cfg.NATS.URL = v
		cfg.NATS.Enabled = true
	}
}

// Validate rejects values the engine cannot work with.
func (c *Config) Validate() error {
	switch c.Pipeline.Platform {
	case pipeline.PlatformVercel, pipeline.PlatformNetlify,
		pipeline.PlatformCloudflare, pipeline.PlatformCustom:
	default:
		return fmt.Errorf("unsupported platform %q", c.Pipeline.Platform)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	return nil
}
