package store

import (
	"context"
	"fmt"
	"time"
)

// SnapshotVersion is the schema version written by this build.
const SnapshotVersion = 1

// Snapshot is the persisted form of an index for one root.
type Snapshot struct {
	Version      int                       `json:"version"`
	Root         string                    `json:"root"`
	CreatedAt    time.Time                 `json:"created_at"`
	Index        map[string]map[string]int `json:"index"`
	Fingerprints map[string]string         `json:"fingerprints"`
}

// NewSnapshot captures idx for root.
func NewSnapshot(root string, idx *Index) *Snapshot {
	postings, fingerprints := idx.Tables()
	return &Snapshot{
		Version:      SnapshotVersion,
		Root:         root,
		CreatedAt:    time.Now().UTC(),
		Index:        postings,
		Fingerprints: fingerprints,
	}
}

// ToIndex validates the snapshot and rebuilds the in-memory index.
func (s *Snapshot) ToIndex() (*Index, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.Root == "" {
		return nil, fmt.Errorf("snapshot has no root")
	}
	return IndexFromTables(s.Index, s.Fingerprints)
}

// SnapshotStore persists one snapshot.
//
// Load returns (nil, nil) when no snapshot exists. A snapshot that exists but
// cannot be decoded yields a CorruptSnapshotError; callers treat it as absent.
// Save replaces the previous snapshot atomically.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Path() string
	Backend() Backend
	Close() error
}
