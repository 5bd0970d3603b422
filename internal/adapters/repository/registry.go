package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/mergington/internal/domain/activity"
	"github.com/okian/mergington/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// slot guards one activity. The roster slice is never shared with callers.
type slot struct {
	mu      sync.Mutex
	record  activity.Activity
	members map[string]struct{}
}

func newSlot(a activity.Activity) *slot {
	s := &slot{
		record:  a.Clone(),
		members: make(map[string]struct{}, len(a.Participants)),
	}
	for _, p := range a.Participants {
		s.members[p] = struct{}{}
	}
	return s
}

func (s *slot) snapshot() activity.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// MemoryRegistry is a Store backed by process memory.
//
// The set of activities is fixed at construction, so the name index is read
// without locking. Each activity has its own mutex: mutations of the same
// activity are serialized, different activities never contend.
type MemoryRegistry struct {
	order           []string
	slots           map[string]*slot
	enforceCapacity bool
}

var _ Store = (*MemoryRegistry)(nil)

// NewMemoryRegistry builds a registry from seed. Every seed record must be
// valid and names must be unique.
func NewMemoryRegistry(seed []activity.Activity, opts ...Option) (*MemoryRegistry, error) {
	r := &MemoryRegistry{
		order: make([]string, 0, len(seed)),
		slots: make(map[string]*slot, len(seed)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, a := range seed {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.slots[a.Name]; ok {
			return nil, fmt.Errorf("%w: %s", activity.ErrDuplicateActivity, a.Name)
		}
		r.order = append(r.order, a.Name)
		r.slots[a.Name] = newSlot(a)
	}
	return r, nil
}

// CapacityEnforced reports whether signups are capped at max_participants.
func (r *MemoryRegistry) CapacityEnforced() bool { return r.enforceCapacity }

// List returns a copy of every activity.
func (r *MemoryRegistry) List(_ context.Context) activity.Catalog {
	start := time.Now()
	defer observe("list", start)

	out := make([]activity.Activity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.slots[name].snapshot())
	}
	return activity.NewCatalog(out...)
}

// Get returns a copy of one activity.
func (r *MemoryRegistry) Get(_ context.Context, name string) (activity.Activity, error) {
	s, ok := r.slots[name]
	if !ok {
		return activity.Activity{}, fmt.Errorf("%w: %s", activity.ErrNotFound, name)
	}
	return s.snapshot(), nil
}

// Signup appends email to the named roster.
func (r *MemoryRegistry) Signup(_ context.Context, name, email string) (activity.Activity, error) {
	start := time.Now()
	defer observe("signup", start)

	s, ok := r.slots[name]
	if !ok {
		return activity.Activity{}, fmt.Errorf("%w: %s", activity.ErrNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.members[email]; dup {
		return activity.Activity{}, fmt.Errorf("%w: %s in %s", activity.ErrAlreadyRegistered, email, name)
	}
	if r.enforceCapacity && len(s.record.Participants) >= s.record.MaxParticipants {
		return activity.Activity{}, fmt.Errorf("%w: %s (%d/%d)", activity.ErrActivityFull, name,
			len(s.record.Participants), s.record.MaxParticipants)
	}

	s.record.Participants = append(s.record.Participants, email)
	s.members[email] = struct{}{}
	return s.record.Clone(), nil
}

// Unregister removes email from the named roster, keeping the order of the rest.
func (r *MemoryRegistry) Unregister(_ context.Context, name, email string) (activity.Activity, error) {
	start := time.Now()
	defer observe("unregister", start)

	s, ok := r.slots[name]
	if !ok {
		return activity.Activity{}, fmt.Errorf("%w: %s", activity.ErrNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, present := s.members[email]; !present {
		return activity.Activity{}, fmt.Errorf("%w: %s in %s", activity.ErrNotRegistered, email, name)
	}

	roster := s.record.Participants
	for i, p := range roster {
		if p == email {
			s.record.Participants = append(roster[:i], roster[i+1:]...)
			break
		}
	}
	delete(s.members, email)
	return s.record.Clone(), nil
}

// Count returns the number of activities.
func (r *MemoryRegistry) Count(_ context.Context) int {
	return len(r.order)
}

// Participants returns the total roster size across all activities.
func (r *MemoryRegistry) Participants(_ context.Context) int {
	total := 0
	for _, name := range r.order {
		s := r.slots[name]
		s.mu.Lock()
		total += len(s.record.Participants)
		s.mu.Unlock()
	}
	return total
}

func observe(op string, start time.Time) {
	metrics.RecordRegistryLatency(op, float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond)
}
