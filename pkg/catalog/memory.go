package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process snapshot store for development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot)}
}

// Get retrieves a snapshot by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *snap
	return &copied, nil
}

// Put stores a snapshot.
func (s *MemoryStore) Put(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *snap
	s.snapshots[snap.ID] = &copied
	return nil
}

// Delete removes a snapshot.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return ErrNotFound
	}
	delete(s.snapshots, id)
	return nil
}

// List returns all snapshots, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		copied := *snap
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
