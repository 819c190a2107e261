// Package config loads xpense.yaml and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/xpense-dev/xpense/internal/model"
)

// FileName is the default config file name.
const FileName = "xpense.yaml"

// Environment variables that override the file.
const (
	EnvAPIURL     = "XPENSE_API_URL"
	EnvAPIToken   = "XPENSE_API_TOKEN"
	EnvAPITimeout = "XPENSE_API_TIMEOUT"
	EnvLogLevel   = "XPENSE_LOG_LEVEL"
)

// Config represents the top-level xpense.yaml configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig locates and authenticates against the Xpense API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token,omitempty"` // usually supplied via XPENSE_API_TOKEN
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultsConfig seeds new drafts.
type DefaultsConfig struct {
	Mode string `yaml:"mode"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Load reads an xpense.yaml file from disk. Fields missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, but a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new setup.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 30 * time.Second,
		},
		Defaults: DefaultsConfig{
			Mode: string(model.ModeStandard),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadEnvFile loads a .env file into the process environment. An empty path
// tries ./.env and ignores its absence. Variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// ApplyEnv overlays XPENSE_* environment variables onto cfg.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvAPIURL); ok {
		c.API.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvAPIToken); ok {
		c.API.Token = v
	}
	if v, ok := os.LookupEnv(EnvAPITimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAPITimeout, err)
		}
		c.API.Timeout = d
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if c.API.BaseURL == "" {
		problems = append(problems, "api.base_url is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		problems = append(problems, "api.timeout must not be negative")
	}
	if c.Defaults.Mode != "" {
		if _, err := model.ParseMode(c.Defaults.Mode); err != nil {
			problems = append(problems, "defaults.mode: "+err.Error())
		}
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
			problems = append(problems, fmt.Sprintf("log.level %q is not a level", c.Log.Level))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Mode returns the parsed default mode, STANDARD when unset.
func (c *Config) Mode() model.Mode {
	m, err := model.ParseMode(c.Defaults.Mode)
	if err != nil {
		return model.ModeStandard
	}
	return m
}
