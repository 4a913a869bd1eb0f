package trail

import (
	"slices"
	"strings"
	"time"
)

// EventKind tells observers what a Weaver mutation did.
type EventKind int

const (
	EventSelected EventKind = iota
	EventTruncated
	EventCleared
	EventSaved
)

func (k EventKind) String() string {
	switch k {
	case EventSelected:
		return "selected"
	case EventTruncated:
		return "truncated"
	case EventCleared:
		return "cleared"
	case EventSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after each mutation. Points is a copy of
// the sequence after the change; Saved is set for EventSaved.
type Event struct {
	Kind    EventKind
	PointID string
	Points  []string
	Saved   *Trail
}

// Weaver holds the trail being built in the current session.
//
// Selecting a point not yet in the sequence appends it; selecting one already
// present rewinds the sequence to that point, inclusive. A Weaver has exactly
// one mutator and is not safe for concurrent use.
type Weaver struct {
	seq     []string
	newID   func() string
	now     func() time.Time
	subs    map[int]func(Event)
	nextSub int
}

type Option func(*Weaver)

// WithIDFunc overrides trail id generation.
func WithIDFunc(f func() string) Option { return func(w *Weaver) { w.newID = f } }

// WithClock overrides the timestamp source.
func WithClock(f func() time.Time) Option { return func(w *Weaver) { w.now = f } }

func NewWeaver(opts ...Option) *Weaver {
	w := &Weaver{
		newID: NewID,
		now:   time.Now,
		subs:  make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Subscribe registers fn for change notifications and returns its remover.
func (w *Weaver) Subscribe(fn func(Event)) func() {
	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn
	return func() { delete(w.subs, id) }
}

func (w *Weaver) emit(e Event) {
	e.Points = w.Points()
	for i := 0; i < w.nextSub; i++ {
		if fn, ok := w.subs[i]; ok {
			fn(e)
		}
	}
}

// Select applies one point pick.
func (w *Weaver) Select(pointID string) {
	if i := slices.Index(w.seq, pointID); i >= 0 {
		w.seq = w.seq[:i+1]
		w.emit(Event{Kind: EventTruncated, PointID: pointID})
		return
	}
	w.seq = append(w.seq, pointID)
	w.emit(Event{Kind: EventSelected, PointID: pointID})
}

// Clear resets the sequence to empty.
func (w *Weaver) Clear() {
	w.seq = nil
	w.emit(Event{Kind: EventCleared})
}

func (w *Weaver) CanSave() bool { return len(w.seq) >= MinPoints }
func (w *Weaver) Len() int      { return len(w.seq) }

func (w *Weaver) Contains(pointID string) bool {
	return slices.Contains(w.seq, pointID)
}

// Points returns a copy of the current sequence.
func (w *Weaver) Points() []string {
	return append([]string(nil), w.seq...)
}

// Save promotes the sequence to a Trail and resets it. Validation happens
// before anything changes: on error the sequence is untouched.
func (w *Weaver) Save(name, description string) (Trail, error) {
	if !w.CanSave() {
		return Trail{}, ErrTooFewPoints
	}
	t := Trail{
		Name:        strings.TrimSpace(name),
		PointIDs:    w.Points(),
		Description: strings.TrimSpace(description),
	}
	if err := t.Validate(); err != nil {
		return Trail{}, err
	}
	t.ID = w.newID()
	t.CreatedAt = w.now()
	w.seq = nil
	saved := t.Clone()
	w.emit(Event{Kind: EventSaved, Saved: &saved})
	return t, nil
}
