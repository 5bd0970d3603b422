package loadtest

import "fmt"

// verifyRoster checks that the final roster matches the initial one, order included.
func verifyRoster(initial, final []string) error {
	if len(initial) != len(final) {
		return fmt.Errorf("%w: had %d participants, now %d", ErrRosterMismatch, len(initial), len(final))
	}
	for i := range initial {
		if initial[i] != final[i] {
			return fmt.Errorf("%w: position %d was %q, now %q", ErrRosterMismatch, i, initial[i], final[i])
		}
	}
	return nil
}
