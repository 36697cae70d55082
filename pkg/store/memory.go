package store

import (
	"context"
	"sync"

	"github.com/entrhq/trainer/pkg/workout"
)

// MemoryStore keeps encoded units in memory. Contents are lost on exit.
type MemoryStore struct {
	mu    sync.RWMutex
	units map[string][][]byte
	opts  options
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		units: make(map[string][][]byte),
		opts:  newOptions(opts),
	}
}

// Append encodes r and keeps the unit in the identity's sequence.
func (s *MemoryStore) Append(ctx context.Context, identity string, r workout.Record) error {
	if err := ctx.Err(); err != nil {
		return writeFailed("append canceled", err)
	}
	if err := checkIdentity(identity); err != nil {
		return writeFailed("invalid identity", err)
	}
	unit, err := encodeUnit(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[identity] = append(s.units[identity], unit[:len(unit)-1])
	return nil
}

// LoadAll decodes the identity's units in append order.
func (s *MemoryStore) LoadAll(ctx context.Context, identity string) ([]workout.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, readFailed("load canceled", err)
	}
	if err := checkIdentity(identity); err != nil {
		return nil, readFailed("invalid identity", err)
	}

	s.mu.RLock()
	units := s.units[identity]
	s.mu.RUnlock()

	d := decoder{opts: s.opts, source: "memory/" + identity}
	records := make([]workout.Record, 0, len(units))
	for i, u := range units {
		rec, ok, err := d.unit(i+1, u)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
