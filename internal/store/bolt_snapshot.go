package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
)

var (
	metaBucket        = []byte("meta")
	postingsBucket    = []byte("postings")
	fingerprintBucket = []byte("fingerprints")
)

// BoltStore keeps the snapshot tables as bbolt buckets. The database is
// opened per call because bbolt holds an exclusive file lock while open.
type BoltStore struct {
	path    string
	timeout time.Duration
}

var _ SnapshotStore = (*BoltStore)(nil)

func openBoltStore(path string) (SnapshotStore, error) {
	return NewBoltStore(path), nil
}

// NewBoltStore returns a store for the database at path.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path, timeout: 5 * time.Second}
}

func (s *BoltStore) open(readOnly bool) (*bolt.DB, error) {
	return bolt.Open(s.path, 0o644, &bolt.Options{Timeout: s.timeout, ReadOnly: readOnly})
}

// postingKey encodes term and doc as uvarint(len(term)) + term + doc. Terms
// may contain any byte, NUL included, so no separator is safe.
func postingKey(term, doc string) []byte {
	key := binary.AppendUvarint(make([]byte, 0, binary.MaxVarintLen64+len(term)+len(doc)), uint64(len(term)))
	key = append(key, term...)
	return append(key, doc...)
}

func splitPostingKey(key []byte) (string, string, error) {
	n, size := binary.Uvarint(key)
	if size <= 0 || n == 0 || uint64(len(key)-size) < n {
		return "", "", fmt.Errorf("malformed posting key %q", key)
	}
	rest := key[size:]
	return string(rest[:n]), string(rest[n:]), nil
}

// Save rewrites every bucket in a single update transaction.
func (s *BoltStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db, err := s.open(false)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return seekerrors.New(seekerrors.ErrCodeSnapshotLocked, "snapshot is locked by another process", err)
		}
		slog.Warn("snapshot_corrupt",
			slog.String("path", s.path),
			slog.String("backend", string(BackendBolt)),
			slog.String("error", err.Error()))
		if rmErr := os.Remove(s.path); rmErr != nil {
			return seekerrors.New(seekerrors.ErrCodeSnapshotWrite, "failed to open snapshot", err)
		}
		if db, err = s.open(false); err != nil {
			return seekerrors.New(seekerrors.ErrCodeSnapshotWrite, "failed to open snapshot", err)
		}
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{metaBucket, postingsBucket, fingerprintBucket} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
		}

		meta, err := tx.CreateBucket(metaBucket)
		if err != nil {
			return err
		}
		if err := meta.Put([]byte("version"), []byte(strconv.Itoa(snap.Version))); err != nil {
			return err
		}
		if err := meta.Put([]byte("root"), []byte(snap.Root)); err != nil {
			return err
		}
		if err := meta.Put([]byte("created_at"), []byte(snap.CreatedAt.Format(time.RFC3339Nano))); err != nil {
			return err
		}

		postings, err := tx.CreateBucket(postingsBucket)
		if err != nil {
			return err
		}
		for term, docs := range snap.Index {
			for doc, n := range docs {
				if err := postings.Put(postingKey(term, doc), []byte(strconv.Itoa(n))); err != nil {
					return err
				}
			}
		}

		fps, err := tx.CreateBucket(fingerprintBucket)
		if err != nil {
			return err
		}
		for doc, hash := range snap.Fingerprints {
			if err := fps.Put([]byte(doc), []byte(hash)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeSnapshotWrite, "failed to write snapshot", err)
	}
	return nil
}

// Load reads the buckets back. A missing file or meta bucket means no
// snapshot.
func (s *BoltStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fileExists(s.path) {
		return nil, nil
	}

	db, err := s.open(true)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, seekerrors.New(seekerrors.ErrCodeSnapshotLocked, "snapshot is locked by another process", err)
		}
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}
	defer db.Close()

	var snap *Snapshot
	err = db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta == nil {
			return nil
		}

		out := &Snapshot{
			Root:         string(meta.Get([]byte("root"))),
			Index:        make(map[string]map[string]int),
			Fingerprints: make(map[string]string),
		}
		version, err := strconv.Atoi(string(meta.Get([]byte("version"))))
		if err != nil {
			return fmt.Errorf("bad version: %w", err)
		}
		out.Version = version
		if ts := meta.Get([]byte("created_at")); len(ts) > 0 {
			if out.CreatedAt, err = time.Parse(time.RFC3339Nano, string(ts)); err != nil {
				return fmt.Errorf("bad created_at: %w", err)
			}
		}

		postings := tx.Bucket(postingsBucket)
		fps := tx.Bucket(fingerprintBucket)
		if postings == nil || fps == nil {
			return fmt.Errorf("snapshot is missing a table")
		}

		err = postings.ForEach(func(k, v []byte) error {
			term, doc, err := splitPostingKey(k)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(string(v))
			if err != nil {
				return fmt.Errorf("bad frequency for %s/%s: %w", term, doc, err)
			}
			docs, ok := out.Index[term]
			if !ok {
				docs = make(map[string]int)
				out.Index[term] = docs
			}
			docs[doc] = n
			return nil
		})
		if err != nil {
			return err
		}

		err = fps.ForEach(func(k, v []byte) error {
			out.Fingerprints[string(k)] = string(v)
			return nil
		})
		if err != nil {
			return err
		}

		snap = out
		return nil
	})
	if err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}
	if snap == nil {
		return nil, nil
	}
	if _, err := snap.ToIndex(); err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}
	return snap, nil
}

// Path returns the database path.
func (s *BoltStore) Path() string { return s.path }

// Backend returns BackendBolt.
func (s *BoltStore) Backend() Backend { return BackendBolt }

// Close is a no-op; the database is opened per call.
func (s *BoltStore) Close() error { return nil }
