// Package trail models constellations: named, ordered sequences of point
// references, and the state machine that weaves a new one from point picks.
package trail

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinPoints         = 2
	MaxPoints         = 500
	MaxNameLen        = 200
	MaxDescriptionLen = 500
	MaxPointIDLen     = 128
)

var (
	ErrEmptyName          = errors.New("trail: name is empty")
	ErrNameTooLong        = errors.New("trail: name longer than 200 characters")
	ErrTooFewPoints       = errors.New("trail: needs at least two points")
	ErrTooManyPoints      = errors.New("trail: more than 500 points")
	ErrBadPointID         = errors.New("trail: point id empty or longer than 128 bytes")
	ErrDescriptionTooLong = errors.New("trail: description longer than 500 characters")
	ErrNotFound           = errors.New("trail: not found")
)

// Trail is a saved constellation.
type Trail struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PointIDs    []string  `json:"pointIds"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"-"`
}

// trailJSON is the stored shape: createdAt is milliseconds since the epoch.
type trailJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	PointIDs    []string `json:"pointIds"`
	Description string   `json:"description,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

func (t Trail) MarshalJSON() ([]byte, error) {
	return json.Marshal(trailJSON{
		ID:          t.ID,
		Name:        t.Name,
		PointIDs:    t.PointIDs,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UnixMilli(),
	})
}

func (t *Trail) UnmarshalJSON(b []byte) error {
	var j trailJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*t = Trail{
		ID:          j.ID,
		Name:        j.Name,
		PointIDs:    j.PointIDs,
		Description: j.Description,
		CreatedAt:   time.UnixMilli(j.CreatedAt).UTC(),
	}
	return nil
}

// Validate checks the invariants a persisted trail must hold.
func (t Trail) Validate() error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	switch {
	case len(t.PointIDs) < MinPoints:
		return ErrTooFewPoints
	case len(t.PointIDs) > MaxPoints:
		return ErrTooManyPoints
	}
	for _, id := range t.PointIDs {
		if id == "" || len(id) > MaxPointIDLen {
			return fmt.Errorf("%w: %q", ErrBadPointID, id)
		}
	}
	return ValidateDescription(t.Description)
}

func ValidateName(n string) error {
	switch {
	case strings.TrimSpace(n) == "":
		return ErrEmptyName
	case utf8.RuneCountInString(n) > MaxNameLen:
		return ErrNameTooLong
	}
	return nil
}

func ValidateDescription(d string) error {
	if utf8.RuneCountInString(d) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Equal compares trails field by field, timestamps at millisecond precision.
func (t Trail) Equal(o Trail) bool {
	if t.ID != o.ID || t.Name != o.Name || t.Description != o.Description {
		return false
	}
	if t.CreatedAt.UnixMilli() != o.CreatedAt.UnixMilli() {
		return false
	}
	if len(t.PointIDs) != len(o.PointIDs) {
		return false
	}
	for i := range t.PointIDs {
		if t.PointIDs[i] != o.PointIDs[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (t Trail) Clone() Trail {
	c := t
	c.PointIDs = append([]string(nil), t.PointIDs...)
	return c
}

// Copy returns t under a new id and creation time. A shared trail is kept
// this way; the shared original itself is never stored.
func (t Trail) Copy(id string, at time.Time) Trail {
	c := t.Clone()
	c.ID = id
	c.CreatedAt = at
	return c
}

// SameShape reports whether t and o have the same name, description and
// points, ignoring identity and creation time.
func (t Trail) SameShape(o Trail) bool {
	return t.Name == o.Name && t.Description == o.Description && slices.Equal(t.PointIDs, o.PointIDs)
}

// Edit carries a rename/re-describe request.
type Edit struct {
	Name        string
	Description string
}

// Apply returns t with the edit applied. Name and description are trimmed;
// an empty description clears it.
func (e Edit) Apply(t Trail) (Trail, error) {
	name := strings.TrimSpace(e.Name)
	if err := ValidateName(name); err != nil {
		return t, err
	}
	desc := strings.TrimSpace(e.Description)
	if err := ValidateDescription(desc); err != nil {
		return t, err
	}
	out := t.Clone()
	out.Name = name
	out.Description = desc
	return out, nil
}

// NewID returns a time-ordered UUID, falling back to a random one.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// DefaultName is the name offered when saving at t.
func DefaultName(t time.Time) string {
	return fmt.Sprintf("Constellation-%s", t.Format("15:04"))
}
