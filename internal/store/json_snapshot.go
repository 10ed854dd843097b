package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
)

// JSONStore keeps the snapshot in one indented JSON file.
type JSONStore struct {
	path string
	lock *FileLock
}

var _ SnapshotStore = (*JSONStore)(nil)

func openJSONStore(path string) (SnapshotStore, error) {
	return NewJSONStore(path), nil
}

// NewJSONStore returns a store for the snapshot file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path, lock: NewFileLock(path)}
}

// Load reads and validates the snapshot.
func (s *JSONStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.lock.RLock(); err != nil {
		return nil, err
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, seekerrors.CorruptSnapshotError(s.path, fmt.Errorf("snapshot file is empty"))
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}
	if snap.Index == nil || snap.Fingerprints == nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, fmt.Errorf("snapshot is missing a table"))
	}
	if _, err := snap.ToIndex(); err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}

	return &snap, nil
}

// Save writes the snapshot through a temp file and rename.
func (s *JSONStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeSnapshotWrite, "failed to encode snapshot", err)
	}

	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return seekerrors.New(seekerrors.ErrCodeSnapshotWrite, "failed to write snapshot", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return seekerrors.New(seekerrors.ErrCodeSnapshotWrite, "failed to replace snapshot", err)
	}

	return nil
}

// Path returns the snapshot file path.
func (s *JSONStore) Path() string { return s.path }

// Backend returns BackendJSON.
func (s *JSONStore) Backend() Backend { return BackendJSON }

// Close is a no-op; the file is opened per call.
func (s *JSONStore) Close() error { return nil }
