package index

import (
	"context"
	"time"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/scanner"
	"github.com/Aman-CERP/txtseek/internal/store"
)

// Status describes the snapshot of a root without publishing anything.
type Status struct {
	Root         string        `json:"root"`
	DataDir      string        `json:"data_dir"`
	SnapshotPath string        `json:"snapshot_path"`
	Backend      store.Backend `json:"backend"`
	Exists       bool          `json:"exists"`
	// Corrupt is set when a snapshot exists but cannot be decoded.
	Corrupt   bool      `json:"corrupt"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Documents int       `json:"documents"`
	Terms     int       `json:"terms"`
	// Changed lists tracked documents whose content no longer matches.
	Changed []string `json:"changed,omitempty"`
	// Added lists eligible documents the snapshot does not track.
	Added []string `json:"added,omitempty"`
	// Stale is true when the next open would rebuild.
	Stale bool `json:"stale"`
}

// Status inspects the snapshot for root and reports what an open would do.
func (m *Manager) Status(ctx context.Context, root string) (*Status, error) {
	canon, err := scanner.ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	dataDir := m.DataDir(canon)
	backend := m.backend(dataDir)
	st := &Status{
		Root:         canon,
		DataDir:      dataDir,
		SnapshotPath: store.SnapshotPath(dataDir, backend),
		Backend:      backend,
		Stale:        true,
	}

	snapStore, err := store.OpenSnapshotStore(dataDir, backend)
	if err != nil {
		return nil, err
	}
	defer func() { _ = snapStore.Close() }()

	snap, err := snapStore.Load(ctx)
	if err != nil {
		if seekerrors.HasCode(err, seekerrors.ErrCodeCorruptSnapshot) {
			st.Exists = true
			st.Corrupt = true
			return st, nil
		}
		return nil, err
	}
	if snap == nil {
		return st, nil
	}
	st.Exists = true
	st.CreatedAt = snap.CreatedAt

	idx, err := snap.ToIndex()
	if err != nil {
		st.Corrupt = true
		return st, nil
	}
	st.Documents = idx.DocumentCount()
	st.Terms = idx.TermCount()
	if snap.Root != canon {
		return st, nil
	}

	if st.Changed, err = m.changedDocuments(ctx, idx); err != nil {
		return nil, err
	}
	if st.Added, err = m.newDocuments(ctx, canon, idx); err != nil {
		return nil, err
	}

	st.Stale = len(st.Changed) > 0 || (m.opts.DetectNewFiles && len(st.Added) > 0)
	return st, nil
}
