// Package storage owns the durability boundary: the word-vector snapshot
// file overwritten after every training pass, and the bbolt run store holding
// per-batch reports and trend checkpoints for offline inspection.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"plstream-engine/internal/wordvec"
)

// SnapshotStore persists the full model state to a single file. Save writes
// to a temp file in the same directory and renames it over the target, so a
// crash mid-write never corrupts the previous snapshot; callers observe the
// overwrite as atomic.
type SnapshotStore struct {
	Path string
}

// NewSnapshotStore returns a store writing to path. The parent directory must
// exist.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{Path: path}
}

// Save overwrites the snapshot with the model's current state.
func (s *SnapshotStore) Save(m *wordvec.Model) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := m.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: write model state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: replace %s: %w", s.Path, err)
	}
	return nil
}

// Load restores the model from the snapshot file. opts must carry the same
// dimension the snapshot was written with.
func (s *SnapshotStore) Load(opts wordvec.Options) (*wordvec.Model, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", s.Path, err)
	}
	defer f.Close()

	m, err := wordvec.Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load %s: %w", s.Path, err)
	}
	return m, nil
}

// Exists reports whether a snapshot file is present.
func (s *SnapshotStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}
