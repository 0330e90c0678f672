package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore is a file-based snapshot store for CLI history.
// Each snapshot is one JSON file named by its ID.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store in the given directory.
// If baseDir is empty, defaults to ~/.config/geodash/snapshots/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "geodash", "snapshots")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// stored mirrors Snapshot with the artifact included, since the JSON file
// is the only place a file-backed snapshot's image lives.
type stored struct {
	Snapshot
	Image []byte `json:"image,omitempty"`
}

// Get retrieves a snapshot by ID.
func (s *FileStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var st stored
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	snap := st.Snapshot
	snap.Image = st.Image
	return &snap, nil
}

// Put stores a snapshot.
func (s *FileStore) Put(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(stored{Snapshot: *snap, Image: snap.Image}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.path(snap.ID), data, 0600); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

// Delete removes a snapshot.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// List returns all snapshots, newest first, without artifacts.
func (s *FileStore) List(ctx context.Context) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var out []*Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, e.Name()))
		if err != nil {
			continue
		}
		var st stored
		if err := json.Unmarshal(data, &st); err != nil {
			continue // skip corrupt entries
		}
		snap := st.Snapshot
		out = append(out, &snap)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
