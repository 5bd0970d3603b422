// Package service provides the activity service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	repository "github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/activity"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// Service owns the activity registry for the lifetime of the process.
type Service struct {
	mu sync.RWMutex

	registry repository.Store

	// Configuration
	seed            []activity.Activity
	enforceCapacity bool

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithActivities replaces the built-in catalog used to seed the registry.
// An empty list keeps the defaults.
func WithActivities(seed []activity.Activity) Option {
	return func(s *Service) {
		if len(seed) > 0 {
			s.seed = seed
		}
	}
}

// WithCapacityEnforcement rejects signups into a full activity.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceCapacity = enabled
	}
}

// New constructs a Service. The registry is built by Start.
func New(opts ...Option) *Service {
	s := &Service{
		seed: activity.Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the registry from the seed catalog.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	reg, err := repository.NewMemoryRegistry(s.seed, repository.WithCapacityEnforcement(s.enforceCapacity))
	if err != nil {
		return fmt.Errorf("seed registry: %w", err)
	}
	s.registry = reg

	catalog := reg.List(ctx)
	metrics.UpdateCatalogSize(catalog.Len())
	for _, name := range catalog.Names() {
		a, _ := catalog.Get(name)
		metrics.UpdateParticipants(name, len(a.Participants))
	}

	s.started = true
	s.logger.Info(ctx, "activity service started",
		logger.Int("activities", catalog.Len()),
		logger.Bool("enforceCapacity", s.enforceCapacity),
	)
	return nil
}

// Stop marks the service stopped. Registry state is discarded with the process.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "activity service stopped")
}

func (s *Service) store() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.registry, nil
}

// Activities returns the whole catalog.
func (s *Service) Activities(ctx context.Context) (activity.Catalog, error) {
	reg, err := s.store()
	if err != nil {
		return activity.Catalog{}, err
	}
	return reg.List(ctx), nil
}

// Signup enrolls email in the named activity and returns the confirmation message.
func (s *Service) Signup(ctx context.Context, name, email string) (string, error) {
	reg, err := s.store()
	if err != nil {
		return "", err
	}

	a, err := reg.Signup(ctx, name, email)
	if err != nil {
		s.reject(ctx, "signup", name, email, err)
		return "", err
	}

	metrics.RecordSignup(name, len(a.Participants))
	s.logger.Debug(ctx, "signed up",
		logger.String("activity", name),
		logger.String("email", email),
		logger.Int("participants", len(a.Participants)),
	)
	return fmt.Sprintf("Signed up %s for %s", email, name), nil
}

// Unregister withdraws email from the named activity and returns the confirmation message.
func (s *Service) Unregister(ctx context.Context, name, email string) (string, error) {
	reg, err := s.store()
	if err != nil {
		return "", err
	}

	a, err := reg.Unregister(ctx, name, email)
	if err != nil {
		s.reject(ctx, "unregister", name, email, err)
		return "", err
	}

	metrics.RecordUnregistration(name, len(a.Participants))
	s.logger.Debug(ctx, "unregistered",
		logger.String("activity", name),
		logger.String("email", email),
		logger.Int("participants", len(a.Participants)),
	)
	return fmt.Sprintf("Unregistered %s from %s", email, name), nil
}

func (s *Service) reject(ctx context.Context, op, name, email string, err error) {
	metrics.RecordRejection(op, reason(err))
	s.logger.Info(ctx, op+" rejected",
		logger.String("activity", name),
		logger.String("email", email),
		logger.Error(err),
	)
}

func reason(err error) string {
	switch {
	case errors.Is(err, activity.ErrNotFound):
		return "not_found"
	case errors.Is(err, activity.ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, activity.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, activity.ErrActivityFull):
		return "full"
	default:
		return "other"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"enforceCapacity": s.enforceCapacity,
	}
	if s.started {
		ctx := context.Background()
		activities := s.registry.Count(ctx)
		stats["activityCount"] = activities
		stats["participantCount"] = s.registry.Participants(ctx)
		metrics.UpdateCatalogSize(activities)
	}
	return stats
}
