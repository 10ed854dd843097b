package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend names a snapshot storage engine.
type Backend string

const (
	// BackendJSON writes a single snapshot.json (default).
	BackendJSON Backend = "json"
	// BackendSQLite stores the tables in snapshot.db (modernc.org/sqlite).
	BackendSQLite Backend = "sqlite"
	// BackendBolt stores the tables as buckets in snapshot.bolt.
	BackendBolt Backend = "bolt"
)

// DefaultBackend is used when none is configured.
const DefaultBackend = BackendJSON

var backendFiles = map[Backend]string{
	BackendJSON:   "snapshot.json",
	BackendSQLite: "snapshot.db",
	BackendBolt:   "snapshot.bolt",
}

var backendOpeners = map[Backend]func(path string) (SnapshotStore, error){
	BackendJSON:   openJSONStore,
	BackendSQLite: openSQLiteStore,
	BackendBolt:   openBoltStore,
}

// Backends lists the supported backends in preference order.
func Backends() []Backend {
	return []Backend{BackendJSON, BackendSQLite, BackendBolt}
}

// ParseBackend validates a backend name. Empty means DefaultBackend.
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return DefaultBackend, nil
	}
	b := Backend(name)
	if _, ok := backendOpeners[b]; !ok {
		return "", fmt.Errorf("unknown snapshot backend: %s (valid options: json, sqlite, bolt)", name)
	}
	return b, nil
}

// SnapshotPath returns the snapshot file for backend inside dataDir.
func SnapshotPath(dataDir string, backend Backend) string {
	name, ok := backendFiles[backend]
	if !ok {
		name = backendFiles[DefaultBackend]
	}
	return filepath.Join(dataDir, name)
}

// OpenSnapshotStore opens the snapshot store for backend in dataDir,
// creating the directory if needed.
func OpenSnapshotStore(dataDir string, backend Backend) (SnapshotStore, error) {
	if backend == "" {
		backend = DefaultBackend
	}
	open, ok := backendOpeners[backend]
	if !ok {
		return nil, fmt.Errorf("unknown snapshot backend: %s", backend)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return open(SnapshotPath(dataDir, backend))
}

// DetectBackend reports which backend wrote the snapshot in dataDir, or ""
// when there is none.
func DetectBackend(dataDir string) Backend {
	for _, b := range Backends() {
		if fileExists(SnapshotPath(dataDir, b)) {
			return b
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
