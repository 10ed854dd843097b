package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteStore keeps the snapshot tables in a SQLite database.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool

	// reset holds why a corrupt database was removed on open; the first
	// Load reports it instead of an absent snapshot.
	reset error
}

var _ SnapshotStore = (*SQLiteStore)(nil)

func openSQLiteStore(path string) (SnapshotStore, error) {
	return NewSQLiteStore(path)
}

// validateSQLiteIntegrity checks an existing database before it is opened
// for writing. A missing file is valid.
func validateSQLiteIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// NewSQLiteStore opens (or creates) the database at path. A corrupt database
// is logged and removed so the next Save starts clean; the first Load then
// returns a CorruptSnapshotError.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	validErr := validateSQLiteIntegrity(path)
	if validErr != nil {
		slog.Warn("snapshot_corrupt",
			slog.String("path", path),
			slog.String("backend", string(BackendSQLite)),
			slog.String("error", validErr.Error()))

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot corrupted at %s and cannot remove: %w", path, err)
		}
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{db: db, path: path, reset: validErr}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS postings (
		term TEXT NOT NULL,
		doc  TEXT NOT NULL,
		freq INTEGER NOT NULL,
		PRIMARY KEY (term, doc)
	);

	CREATE TABLE IF NOT EXISTS fingerprints (
		doc  TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces all three tables in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("snapshot store is closed")
	}

	if err := s.save(ctx, snap); err != nil {
		return seekerrors.New(seekerrors.ErrCodeSnapshotWrite, "failed to write snapshot", err)
	}
	return nil
}

func (s *SQLiteStore) save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"meta", "postings", "fingerprints"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"version":    strconv.Itoa(snap.Version),
		"root":       snap.Root,
		"created_at": snap.CreatedAt.Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("failed to write meta %s: %w", k, err)
		}
	}

	postingStmt, err := tx.PrepareContext(ctx, `INSERT INTO postings(term, doc, freq) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare posting statement: %w", err)
	}
	defer postingStmt.Close()

	for term, docs := range snap.Index {
		for doc, n := range docs {
			if _, err := postingStmt.ExecContext(ctx, term, doc, n); err != nil {
				return fmt.Errorf("failed to write posting %s/%s: %w", term, doc, err)
			}
		}
	}

	fpStmt, err := tx.PrepareContext(ctx, `INSERT INTO fingerprints(doc, hash) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fingerprint statement: %w", err)
	}
	defer fpStmt.Close()

	for doc, hash := range snap.Fingerprints {
		if _, err := fpStmt.ExecContext(ctx, doc, hash); err != nil {
			return fmt.Errorf("failed to write fingerprint %s: %w", doc, err)
		}
	}

	return tx.Commit()
}

// Load reads the tables back. An empty meta table means no snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("snapshot store is closed")
	}
	if s.reset != nil {
		err := s.reset
		s.reset = nil
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}

	meta, err := s.loadMeta(ctx)
	if err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}
	if len(meta) == 0 {
		return nil, nil
	}

	snap := &Snapshot{
		Root:         meta["root"],
		Index:        make(map[string]map[string]int),
		Fingerprints: make(map[string]string),
	}
	if snap.Version, err = strconv.Atoi(meta["version"]); err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, fmt.Errorf("bad version: %w", err))
	}
	if ts := meta["created_at"]; ts != "" {
		if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, seekerrors.CorruptSnapshotError(s.path, fmt.Errorf("bad created_at: %w", err))
		}
	}

	if err := s.loadPostings(ctx, snap); err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}
	if err := s.loadFingerprints(ctx, snap); err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}
	if _, err := snap.ToIndex(); err != nil {
		return nil, seekerrors.CorruptSnapshotError(s.path, err)
	}

	return snap, nil
}

func (s *SQLiteStore) loadMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("failed to query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (s *SQLiteStore) loadPostings(ctx context.Context, snap *Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `SELECT term, doc, freq FROM postings`)
	if err != nil {
		return fmt.Errorf("failed to query postings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var term, doc string
		var n int
		if err := rows.Scan(&term, &doc, &n); err != nil {
			return fmt.Errorf("failed to scan posting: %w", err)
		}
		docs, ok := snap.Index[term]
		if !ok {
			docs = make(map[string]int)
			snap.Index[term] = docs
		}
		docs[doc] = n
	}
	return rows.Err()
}

func (s *SQLiteStore) loadFingerprints(ctx context.Context, snap *Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `SELECT doc, hash FROM fingerprints`)
	if err != nil {
		return fmt.Errorf("failed to query fingerprints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc, hash string
		if err := rows.Scan(&doc, &hash); err != nil {
			return fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		snap.Fingerprints[doc] = hash
	}
	return rows.Err()
}

// Path returns the database path.
func (s *SQLiteStore) Path() string { return s.path }

// Backend returns BackendSQLite.
func (s *SQLiteStore) Backend() Backend { return BackendSQLite }

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
