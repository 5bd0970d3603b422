package repository

// Option applies a configuration option to the MemoryRegistry.
type Option func(*MemoryRegistry)

// WithCapacityEnforcement rejects signups once a roster reaches
// max_participants. Off by default.
func WithCapacityEnforcement(enabled bool) Option {
	return func(r *MemoryRegistry) {
		r.enforceCapacity = enabled
	}
}
