package pebblestore

import (
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

// SyncMode selects WAL durability for committed writes.
type SyncMode int

const (
	SyncUnspecified SyncMode = iota
	// SyncAlways fsyncs the WAL on each committed batch.
	SyncAlways
	// SyncInterval lets Pebble coalesce WAL syncs within SyncInterval.
	SyncInterval
	// SyncNever leaves syncing to Pebble's own policies. Acceptable for data
	// that is a cache of something re-derivable, like relay history.
	SyncNever
)

// Options configures the store wrapper.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// Sync determines when to sync the WAL.
	Sync SyncMode
	// SyncInterval controls group-commit when Sync=SyncInterval.
	SyncInterval time.Duration
	// PebbleOptions allows advanced tuning. If nil, defaults are used.
	PebbleOptions *pebble.Options
}

// DB wraps a Pebble database with the sync policy chosen at open time.
type DB struct {
	inner     *pebble.DB
	writeSync bool
}

// ErrNotFound aliases the Pebble sentinel so callers need not import pebble
// for point lookups.
var ErrNotFound = pebble.ErrNotFound

// Open creates or opens a Pebble database with the provided options.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebble: Options.DataDir is required")
	}
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	switch opts.Sync {
	case SyncAlways, SyncNever:
		// Commit-time choice; nothing to configure here.
	case SyncInterval:
		if opts.SyncInterval <= 0 {
			opts.SyncInterval = 5 * time.Millisecond
		}
		interval := opts.SyncInterval
		po.WALMinSyncInterval = func() time.Duration { return interval }
	default:
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, err
	}
	return &DB{inner: inner, writeSync: opts.Sync == SyncAlways}, nil
}

// Close closes the Pebble database.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// NewBatch creates a new batch for atomic multi-key updates.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits the batch with the configured sync policy.
func (db *DB) CommitBatch(b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebble: nil batch")
	}
	syncMode := pebble.NoSync
	if db.writeSync {
		syncMode = pebble.Sync
	}
	return b.Commit(syncMode)
}

// Get copies the value for the given key. Missing keys return ErrNotFound.
func (db *DB) Get(key []byte) ([]byte, error) {
	val, closer, err := db.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

// NewIter creates a raw Pebble iterator with the provided options.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}
