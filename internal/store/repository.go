package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/sahilm/fuzzy"

	"constellations/internal/logging"
	"constellations/internal/trail"
)

// DefaultKey is the slot holding the saved trail collection.
const DefaultKey = "saved_trails"

// ErrWrite wraps a failed slot write. The in-memory collection stays
// authoritative for the rest of the session.
var ErrWrite = errors.New("store: write failed")

// Repository is the trail persistence port over one slot.
//
// Every mutation is read-modify-write of the whole collection. There is no
// locking: one session is the only writer and the last write wins.
type Repository struct {
	slot   Slot
	key    string
	trails []trail.Trail
	// dirty is set while the slot is behind the in-memory collection.
	dirty bool
	// known is set once the in-memory collection has matched the slot.
	known bool
}

func NewRepository(slot Slot, key string) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{slot: slot, key: key}
}

func (r *Repository) Key() string { return r.key }

// LoadAll reads the collection from the slot. A missing or corrupt slot
// yields an empty collection; an unreadable one yields the last collection
// seen, which is empty before the first successful read.
func (r *Repository) LoadAll(ctx context.Context) []trail.Trail {
	ts, _ := r.current(ctx)
	return ts
}

// SaveAll replaces the collection. On write failure the in-memory copy still
// reflects ts and ErrWrite is returned.
func (r *Repository) SaveAll(ctx context.Context, ts []trail.Trail) error {
	r.setCache(ts)
	if ts == nil {
		ts = []trail.Trail{}
	}
	data, err := json.Marshal(ts)
	if err != nil {
		r.dirty = true
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := r.slot.Put(ctx, r.key, data); err != nil {
		r.dirty = true
		logging.L().Warn("persist trails", slog.String("slot", r.key), slog.Int("count", len(ts)), slog.Any("err", err))
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	r.dirty, r.known = false, true
	return nil
}

// Trails returns the in-memory collection without touching the slot.
func (r *Repository) Trails() []trail.Trail { return clone(r.trails) }

// read returns the stored collection. Missing and corrupt slots read as
// empty; any other error is returned.
func (r *Repository) read(ctx context.Context) ([]trail.Trail, error) {
	data, err := r.slot.Get(ctx, r.key)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	var ts []trail.Trail
	if err := json.Unmarshal(data, &ts); err != nil {
		logging.L().Warn("decode trails", slog.String("slot", r.key), slog.Any("err", err))
		return nil, nil
	}
	return ts, nil
}

// current is the base of a read-modify-write cycle. After a failed write the
// slot is stale, so the in-memory collection is used instead. A failed read
// also falls back to memory; writable is false when memory has never matched
// the slot, since writing it back would drop whatever the slot holds.
func (r *Repository) current(ctx context.Context) (ts []trail.Trail, writable bool) {
	if r.dirty && r.known {
		return clone(r.trails), true
	}
	stored, err := r.read(ctx)
	if err != nil {
		logging.L().Warn("read trails", slog.String("slot", r.key), slog.Bool("known", r.known), slog.Any("err", err))
		return clone(r.trails), r.known
	}
	if r.dirty {
		// changes held back while the slot was unreadable
		stored = merge(stored, r.trails)
	}
	r.known = true
	r.setCache(stored)
	return clone(stored), true
}

// commit writes ts, or only holds it in memory when the slot cannot be
// written safely.
func (r *Repository) commit(ctx context.Context, ts []trail.Trail, writable bool) error {
	if !writable {
		r.setCache(ts)
		r.dirty = true
		return fmt.Errorf("%w: saved trails could not be read", ErrWrite)
	}
	return r.SaveAll(ctx, ts)
}

// Add appends a validated trail.
func (r *Repository) Add(ctx context.Context, t trail.Trail) error {
	if err := t.Validate(); err != nil {
		return err
	}
	ts, writable := r.current(ctx)
	return r.commit(ctx, append(ts, t.Clone()), writable)
}

// Delete removes the trail with id. Unknown ids return trail.ErrNotFound and
// write nothing.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ts, writable := r.current(ctx)
	out := removeTrail(ts, id)
	if len(out) == len(ts) {
		return trail.ErrNotFound
	}
	return r.commit(ctx, out, writable)
}

// Update renames/re-describes the trail with id.
func (r *Repository) Update(ctx context.Context, id string, e trail.Edit) (trail.Trail, error) {
	ts, writable := r.current(ctx)
	out, updated, err := replaceTrail(ts, id, e)
	if err != nil {
		return trail.Trail{}, err
	}
	return updated, r.commit(ctx, out, writable)
}

// Get returns the trail with id from the slot.
func (r *Repository) Get(ctx context.Context, id string) (trail.Trail, error) {
	ts, _ := r.current(ctx)
	for _, t := range ts {
		if t.ID == id {
			return t, nil
		}
	}
	return trail.Trail{}, trail.ErrNotFound
}

type trailNames []trail.Trail

func (n trailNames) String(i int) string { return n[i].Name }
func (n trailNames) Len() int            { return len(n) }

// Find fuzzy-matches query against trail names, best match first. An empty
// query returns everything in stored order.
func (r *Repository) Find(ctx context.Context, query string) []trail.Trail {
	ts, _ := r.current(ctx)
	if query == "" {
		return ts
	}
	matches := fuzzy.FindFrom(query, trailNames(ts))
	sort.Stable(matches)
	out := make([]trail.Trail, 0, len(matches))
	for _, m := range matches {
		out = append(out, ts[m.Index])
	}
	return out
}

func (r *Repository) setCache(ts []trail.Trail) { r.trails = clone(ts) }

func removeTrail(ts []trail.Trail, id string) []trail.Trail {
	out := make([]trail.Trail, 0, len(ts))
	for _, t := range ts {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func replaceTrail(ts []trail.Trail, id string, e trail.Edit) ([]trail.Trail, trail.Trail, error) {
	out := make([]trail.Trail, len(ts))
	var (
		updated trail.Trail
		found   bool
	)
	for i, t := range ts {
		if t.ID != id {
			out[i] = t
			continue
		}
		nt, err := e.Apply(t)
		if err != nil {
			return nil, trail.Trail{}, err
		}
		out[i], updated, found = nt, nt, true
	}
	if !found {
		return nil, trail.Trail{}, trail.ErrNotFound
	}
	return out, updated, nil
}

// merge overlays pending onto stored by id, appending what stored lacks.
func merge(stored, pending []trail.Trail) []trail.Trail {
	out := clone(stored)
	for _, p := range pending {
		i := slices.IndexFunc(out, func(t trail.Trail) bool { return t.ID == p.ID })
		if i >= 0 {
			out[i] = p.Clone()
		} else {
			out = append(out, p.Clone())
		}
	}
	return out
}

func clone(ts []trail.Trail) []trail.Trail {
	if ts == nil {
		return nil
	}
	out := make([]trail.Trail, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}
