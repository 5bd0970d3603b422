// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers an optional YAML file and environment variables on top.
// - Errors returned from Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"time"

	"github.com/okian/mergington/internal/domain/activity"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// EnforceCapacity rejects signups once an activity reaches
	// max_participants. Off by default to keep rosters uncapped.
	EnforceCapacity bool `koanf:"enforce_capacity"`

	// Activities replaces the built-in catalog when non-empty.
	Activities []ActivityConfig `koanf:"activities"`
}

// ActivityConfig is one seeded activity in the config file.
type ActivityConfig struct {
	Name            string   `koanf:"name"`
	Description     string   `koanf:"description"`
	Schedule        string   `koanf:"schedule"`
	MaxParticipants int      `koanf:"max_participants"`
	Participants    []string `koanf:"participants"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":8000",
		ShutdownTimeout: 30 * time.Second,
	}
}

// Seed returns the configured catalog, or nil when the built-in one applies.
func (c *Config) Seed() []activity.Activity {
	if len(c.Activities) == 0 {
		return nil
	}
	out := make([]activity.Activity, 0, len(c.Activities))
	for _, a := range c.Activities {
		out = append(out, activity.Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    append([]string(nil), a.Participants...),
		})
	}
	return out
}
