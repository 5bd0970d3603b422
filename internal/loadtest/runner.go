package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/mergington/pkg/logger"
)

// Worker configuration constants.
const workerChannelMultiplier = 2

type outcome int

const (
	outcomeOK outcome = iota
	outcomeFailed
)

// Run drives concurrent enrollment traffic and verifies the roster afterwards.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadtest")
	stats := &Stats{Students: cfg.Students, StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting enrollment load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("activity", cfg.Activity),
		logger.Int("students", cfg.Students),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	// Step 1: Record the roster before any traffic
	initial, err := client.Roster(ctx, cfg.Activity)
	if err != nil {
		return stats, fmt.Errorf("initial roster: %w", err)
	}
	stats.InitialRoster = len(initial)

	students := generateStudents(cfg.Students, cfg.Domain)

	// Step 2: Sign everyone up
	ok, failed := fanOut(ctx, cfg.Workers, students, func(email string) outcome {
		return expect(ctx, log, "signup", http.StatusOK, email)(client.Signup(ctx, cfg.Activity, email))
	})
	stats.Signups, stats.Failed = ok, stats.Failed+failed

	// Step 3: Repeat signups must be rejected
	ok, failed = fanOut(ctx, cfg.Workers, students, func(email string) outcome {
		return expect(ctx, log, "duplicate signup", http.StatusBadRequest, email)(client.Signup(ctx, cfg.Activity, email))
	})
	stats.DuplicateDenied, stats.Failed = ok, stats.Failed+failed

	// Step 4: Withdraw everyone
	ok, failed = fanOut(ctx, cfg.Workers, students, func(email string) outcome {
		return expect(ctx, log, "unregister", http.StatusOK, email)(client.Unregister(ctx, cfg.Activity, email))
	})
	stats.Unregistrations, stats.Failed = ok, stats.Failed+failed

	// Step 5: Verify
	final, err := client.Roster(ctx, cfg.Activity)
	if err != nil {
		return stats, fmt.Errorf("final roster: %w", err)
	}
	stats.FinalRoster = len(final)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := verifyRoster(initial, final); err != nil {
		return stats, err
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d requests did not return the expected status", ErrUnexpectedStatus, stats.Failed)
	}

	log.Info(ctx, "load run completed successfully")
	return stats, nil
}

// expect adapts a client call result into an outcome against the wanted status.
func expect(ctx context.Context, log logger.Logger, step string, want int, email string) func(int, messageResponse, error) outcome {
	return func(status int, msg messageResponse, err error) outcome {
		if err != nil {
			log.Debug(ctx, "request failed", logger.String("step", step), logger.String("email", email), logger.Error(err))
			return outcomeFailed
		}
		if status != want {
			log.Debug(ctx, "unexpected status",
				logger.String("step", step),
				logger.String("email", email),
				logger.Int("status", status),
				logger.String("detail", msg.Detail))
			return outcomeFailed
		}
		return outcomeOK
	}
}

// fanOut feeds emails to a fixed worker pool and counts outcomes.
func fanOut(ctx context.Context, workers int, emails []string, fn func(string) outcome) (int, int) {
	var ok, failed int64
	jobs := make(chan string, workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for email := range jobs {
				if fn(email) == outcomeOK {
					atomic.AddInt64(&ok, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, email := range emails {
			select {
			case <-ctx.Done():
				return
			case jobs <- email:
			}
		}
	}()

	wg.Wait()
	return int(ok), int(failed)
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var requestsPerSecond float64
	if stats.Duration > 0 {
		requests := stats.Signups + stats.DuplicateDenied + stats.Unregistrations + stats.Failed
		requestsPerSecond = float64(requests) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("students", stats.Students),
		logger.Int("signups", stats.Signups),
		logger.Int("duplicateDenied", stats.DuplicateDenied),
		logger.Int("unregistrations", stats.Unregistrations),
		logger.Int("failed", stats.Failed),
		logger.Int("initialRoster", stats.InitialRoster),
		logger.Int("finalRoster", stats.FinalRoster),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
