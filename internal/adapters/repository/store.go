// Package repository holds the in-memory activity registry.
package repository

import (
	"context"

	"github.com/okian/mergington/internal/domain/activity"
)

// Store provides read/write access to the activity catalog.
type Store interface {
	// List returns a deep copy of every activity in seed order.
	List(ctx context.Context) activity.Catalog

	// Get returns a copy of one activity.
	// Returns activity.ErrNotFound if the name is unknown.
	Get(ctx context.Context, name string) (activity.Activity, error)

	// Signup appends email to the roster and returns the updated activity.
	// Fails with activity.ErrNotFound, activity.ErrAlreadyRegistered or,
	// when capacity is enforced, activity.ErrActivityFull.
	Signup(ctx context.Context, name, email string) (activity.Activity, error)

	// Unregister removes email from the roster and returns the updated activity.
	// Fails with activity.ErrNotFound or activity.ErrNotRegistered.
	Unregister(ctx context.Context, name, email string) (activity.Activity, error)

	// Count returns the number of activities.
	Count(ctx context.Context) int

	// Participants returns the total roster size across all activities.
	Participants(ctx context.Context) int
}
