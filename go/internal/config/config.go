// Package config loads scoreboard settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ktbartholomew/karate-scoreboard/go/internal/scoreboard"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when SCOREBOARD_CONFIG is unset.
const DefaultPath = "scoreboard.yaml"

type Config struct {
	Match struct {
		DurationSec            int  `yaml:"duration_sec"`
		PrefixWindowMs         int  `yaml:"prefix_window_ms"`
		TickIntervalMs         int  `yaml:"tick_interval_ms"`
		WarningThresholdSec    int  `yaml:"warning_threshold_sec"`
		ConsumePrefixOnResolve bool `yaml:"consume_prefix_on_resolve"`
	} `yaml:"match"`

	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Prompt struct {
		TimeoutSec int `yaml:"timeout_sec"`
	} `yaml:"prompt"`

	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	var c Config
	c.Match.DurationSec = 60
	c.Match.PrefixWindowMs = 2000
	c.Match.TickIntervalMs = 17
	c.Match.WarningThresholdSec = 15
	c.Server.Port = "8080"
	c.Server.AllowedOrigins = []string{"*"}
	c.Prompt.TimeoutSec = 60
	c.NATS.SubjectPrefix = "scoreboard.events"
	c.LogLevel = "info"
	return &c
}

// Load reads path over the defaults, then applies environment overrides. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// PathFromEnv returns SCOREBOARD_CONFIG or DefaultPath.
func PathFromEnv() string {
	return getEnv("SCOREBOARD_CONFIG", DefaultPath)
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.Match.DurationSec = getEnvAsInt("MATCH_DURATION_SEC", c.Match.DurationSec)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Match.DurationSec < 0 {
		errs = append(errs, fmt.Errorf("match.duration_sec must not be negative, got %d", c.Match.DurationSec))
	}
	if c.Match.PrefixWindowMs <= 0 {
		errs = append(errs, fmt.Errorf("match.prefix_window_ms must be positive, got %d", c.Match.PrefixWindowMs))
	}
	if c.Match.TickIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("match.tick_interval_ms must be positive, got %d", c.Match.TickIntervalMs))
	}
	if c.Prompt.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("prompt.timeout_sec must be positive, got %d", c.Prompt.TimeoutSec))
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// EngineConfig converts the match section for scoreboard.NewEngine.
func (c *Config) EngineConfig() scoreboard.Config {
	return scoreboard.Config{
		MatchDuration:          time.Duration(c.Match.DurationSec) * time.Second,
		TickInterval:           time.Duration(c.Match.TickIntervalMs) * time.Millisecond,
		PrefixWindow:           time.Duration(c.Match.PrefixWindowMs) * time.Millisecond,
		WarningThreshold:       time.Duration(c.Match.WarningThresholdSec) * time.Second,
		ConsumePrefixOnResolve: c.Match.ConsumePrefixOnResolve,
	}
}

// PromptTimeout is how long a duration prompt waits for the operator.
func (c *Config) PromptTimeout() time.Duration {
	return time.Duration(c.Prompt.TimeoutSec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
