// Package config loads the run configuration from a config file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment variables overriding config keys,
	// e.g. TRAJECTORY_USERNAME or TRAJECTORY_LANGUAGES_SOURCE.
	EnvPrefix = "TRAJECTORY"
	// DefaultPath is the config file read when none is given.
	DefaultPath = "config.json"

	LanguageSourceREST    = "rest"
	LanguageSourceGraphQL = "graphql"
)

// EnvFiles are loaded, in order, before the config. Variables already set win.
var EnvFiles = []string{".env.local", ".env"}

// Config is the validated configuration of a run.
type Config struct {
	Username  string          `mapstructure:"username"`
	Goals     GoalsConfig     `mapstructure:"goals"`
	Timezone  string          `mapstructure:"timezone"`
	Output    string          `mapstructure:"output"`
	Languages LanguagesConfig `mapstructure:"languages"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// GoalsConfig is read by the presentation only.
type GoalsConfig struct {
	WeeklyCommits int `mapstructure:"weeklyCommits"`
}

type LanguagesConfig struct {
	Source      string `mapstructure:"source"`
	Concurrency int    `mapstructure:"concurrency"`
}

type RateLimitConfig struct {
	// MaxWait is the longest sleep accepted for a secondary rate limit.
	MaxWait time.Duration `mapstructure:"maxWait"`
}

// Load reads the config file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("username", "")
	v.SetDefault("goals.weeklyCommits", 0)
	v.SetDefault("timezone", "Local")
	v.SetDefault("output", "github-data.json")
	v.SetDefault("languages.source", LanguageSourceREST)
	v.SetDefault("languages.concurrency", 4)
	v.SetDefault("rateLimit.maxWait", "0s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields a run depends on.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Username) == "" {
		errs = append(errs, errors.New("username is required"))
	}
	switch c.Languages.Source {
	case LanguageSourceREST, LanguageSourceGraphQL:
	default:
		errs = append(errs, fmt.Errorf("languages.source must be %q or %q, got %q", LanguageSourceREST, LanguageSourceGraphQL, c.Languages.Source))
	}
	if c.Languages.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("languages.concurrency must be at least 1, got %d", c.Languages.Concurrency))
	}
	if c.RateLimit.MaxWait < 0 {
		errs = append(errs, fmt.Errorf("rateLimit.maxWait must not be negative, got %s", c.RateLimit.MaxWait))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	return errors.Join(errs...)
}

// ValidateGoals checks the goals read by the presentation. Fetching does not need them.
func (c *Config) ValidateGoals() error {
	if c.Goals.WeeklyCommits <= 0 {
		return fmt.Errorf("goals.weeklyCommits must be positive, got %d", c.Goals.WeeklyCommits)
	}
	return nil
}

// Location returns the display location of commit times.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadEnvFiles loads the EnvFiles that exist and returns their names.
func LoadEnvFiles() ([]string, error) {
	var loaded []string
	for _, name := range EnvFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", name, err)
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}
