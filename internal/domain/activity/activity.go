// Package activity contains the extracurricular activity model shared by
// the registry, the service and the HTTP layer.
package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Activity is a named extracurricular offering with its roster.
// Name is the catalog key and is not part of the JSON body.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Clone returns a deep copy. Participants is never nil in the copy so an
// empty roster encodes as [] rather than null.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

// Has reports whether email is on the roster.
func (a Activity) Has(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Validate checks the shape of a seed record.
func (a Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidActivity)
	}
	if a.MaxParticipants <= 0 {
		return fmt.Errorf("%w: %s: max_participants must be positive", ErrInvalidActivity, a.Name)
	}
	seen := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		if _, ok := seen[p]; ok {
			return fmt.Errorf("%w: %s: duplicate participant %q", ErrInvalidActivity, a.Name, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Catalog is a read-only snapshot of the registry. It keeps the seed order
// so the JSON object lists activities the way they were configured.
type Catalog struct {
	order  []string
	byName map[string]Activity
}

// NewCatalog builds a catalog from activities in the given order.
// Later duplicates of a name replace earlier ones in place.
func NewCatalog(activities ...Activity) Catalog {
	c := Catalog{
		order:  make([]string, 0, len(activities)),
		byName: make(map[string]Activity, len(activities)),
	}
	for _, a := range activities {
		if _, ok := c.byName[a.Name]; !ok {
			c.order = append(c.order, a.Name)
		}
		c.byName[a.Name] = a
	}
	return c
}

// Len returns the number of activities.
func (c Catalog) Len() int { return len(c.order) }

// Names returns activity names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Get returns the named activity.
func (c Catalog) Get(name string) (Activity, bool) {
	a, ok := c.byName[name]
	return a, ok
}

// MarshalJSON encodes the catalog as a JSON object in catalog order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
