// Package store persists saved trails in one named slot of a durable
// key-value store.
package store

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("store: slot not found")
	ErrClosed   = errors.New("store: closed")
)

// Slot is a durable key-value facility. Values are opaque bytes.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// MemorySlot is an in-process Slot. GetErr and PutErr, when set, are returned
// instead of touching the map.
type MemorySlot struct {
	mu     sync.Mutex
	data   map[string][]byte
	GetErr error
	PutErr error
	Puts   int
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (m *MemorySlot) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemorySlot) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.data[key] = append([]byte(nil), value...)
	m.Puts++
	return nil
}
