package loadtest

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors reported by a load run.
var (
	ErrInvalidConfig    = errors.New("invalid load test config")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrRosterMismatch   = errors.New("roster changed after load run")
)

// Config holds configuration for an enrollment load run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Activity string        // Activity to enroll into
	Students int           // Number of generated students
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Domain   string        // Email domain for generated students
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Activity == "":
		return fmt.Errorf("%w: activity is required", ErrInvalidConfig)
	case c.Students <= 0:
		return fmt.Errorf("%w: students must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Students        int
	Signups         int
	DuplicateDenied int
	Unregistrations int
	Failed          int
	InitialRoster   int
	FinalRoster     int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// activityView is the part of an activity the checker reads.
type activityView struct {
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

type messageResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}
