// Package pebblestore is a thin wrapper around Pebble carrying the sync
// policy of the opening component, so callers commit batches without
// repeating durability decisions at every write site.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./history",
//	    Sync:    pebblestore.SyncNever,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(b)
//	b.Close()
package pebblestore
