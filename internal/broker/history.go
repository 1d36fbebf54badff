package broker

import (
	"encoding/binary"
	"hash/crc32"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/lazy-eggplant/vs.logger/internal/storage/pebble"
)

// History is a bounded, pebble-backed store of recently relayed payloads.
// The broker appends every received datagram; viewers that reconnect may
// request an explicit replay of the tail. Retention is approximate: when the
// total stored payload bytes exceed the budget, the oldest entries are
// deleted first.
//
// Keyspace (lexicographically sortable):
//   - hist/m           (meta: last assigned seq, 8 bytes BE)
//   - hist/e/{seq_be8} (records)
//
// Records carry an 8-byte receive timestamp (ms) header and a crc32c, so a
// torn write surfaces as a skipped record rather than a corrupt replay.
type History struct {
	db *pebblestore.DB

	mu      sync.Mutex
	lastSeq uint64
	bytes   int64

	maxBytes int64
}

var (
	histMetaKey     = []byte("hist/m")
	histEntryPrefix = []byte("hist/e/")
)

func histEntryKey(seq uint64) []byte {
	k := make([]byte, 0, len(histEntryPrefix)+8)
	k = append(k, histEntryPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}

var histCastagnoli = crc32.MakeTable(crc32.Castagnoli)

// encodeHistRecord lays out: ts_ms(8B BE) | payload | crc32c(ts|payload).
func encodeHistRecord(tsMs int64, payload []byte) []byte {
	out := make([]byte, 0, 8+len(payload)+4)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(tsMs))
	out = append(out, ts[:]...)
	out = append(out, payload...)
	crc := crc32.Update(0, histCastagnoli, out)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	return append(out, crcb[:]...)
}

func decodeHistRecord(b []byte) (tsMs int64, payload []byte, ok bool) {
	if len(b) < 8+4 {
		return 0, nil, false
	}
	body := b[:len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	if crc32.Update(0, histCastagnoli, body) != expect {
		return 0, nil, false
	}
	tsMs = int64(binary.BigEndian.Uint64(body[:8]))
	payload = append([]byte(nil), body[8:]...)
	return tsMs, payload, true
}

// OpenHistory opens or creates the history store at dir. maxBytes <= 0 means
// unbounded. History is a cache of already-relayed payloads, so the store
// runs without WAL syncs.
func OpenHistory(dir string, maxBytes int64) (*History, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Sync: pebblestore.SyncNever})
	if err != nil {
		return nil, err
	}
	h := &History{db: db, maxBytes: maxBytes}
	if meta, err := db.Get(histMetaKey); err == nil && len(meta) >= 8 {
		h.lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	h.bytes = h.scanBytes()
	return h, nil
}

// Close closes the underlying store.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func (h *History) scanBytes() int64 {
	iter, err := h.db.NewIter(h.iterBounds())
	if err != nil {
		return 0
	}
	defer iter.Close()
	var total int64
	for ok := iter.First(); ok; ok = iter.Next() {
		total += int64(len(iter.Value()))
	}
	return total
}

func (h *History) iterBounds() *pebble.IterOptions {
	hi := histEntryKey(^uint64(0))
	return &pebble.IterOptions{
		LowerBound: histEntryKey(0),
		UpperBound: append(hi, 0x00),
	}
}

// Append stores one relayed payload and trims if over budget.
func (h *History) Append(payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastSeq++
	val := encodeHistRecord(time.Now().UnixMilli(), payload)

	b := h.db.NewBatch()
	defer b.Close()
	if err := b.Set(histEntryKey(h.lastSeq), val, nil); err != nil {
		return err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], h.lastSeq)
	if err := b.Set(histMetaKey, meta[:], nil); err != nil {
		return err
	}
	if err := h.db.CommitBatch(b); err != nil {
		return err
	}
	h.bytes += int64(len(val))

	if h.maxBytes > 0 && h.bytes > h.maxBytes {
		return h.trimLocked()
	}
	return nil
}

// trimLocked deletes oldest entries until the stored bytes fit the budget.
func (h *History) trimLocked() error {
	iter, err := h.db.NewIter(h.iterBounds())
	if err != nil {
		return err
	}
	defer iter.Close()

	b := h.db.NewBatch()
	defer b.Close()
	deleted := false
	for ok := iter.First(); ok && h.bytes > h.maxBytes; ok = iter.Next() {
		valLen := int64(len(iter.Value()))
		if err := b.Delete(iter.Key(), nil); err != nil {
			return err
		}
		h.bytes -= valLen
		deleted = true
	}
	if !deleted {
		return nil
	}
	return h.db.CommitBatch(b)
}

// ReplayRecent streams the most recent n payloads, oldest first, to fn.
// Streaming stops at the first fn error.
func (h *History) ReplayRecent(n int, fn func(payload []byte) error) error {
	if n <= 0 {
		return nil
	}
	iter, err := h.db.NewIter(h.iterBounds())
	if err != nil {
		return err
	}
	defer iter.Close()

	// Walk back n entries, then emit forward in receive order.
	if !iter.Last() {
		return nil
	}
	for i := 1; i < n; i++ {
		if !iter.Prev() {
			if !iter.First() {
				return nil
			}
			break
		}
	}
	for iter.Valid() {
		if _, payload, ok := decodeHistRecord(iter.Value()); ok {
			if err := fn(payload); err != nil {
				return err
			}
		}
		if !iter.Next() {
			break
		}
	}
	return nil
}

// Export streams every stored payload, oldest first, to fn.
func (h *History) Export(fn func(payload []byte) error) error {
	iter, err := h.db.NewIter(h.iterBounds())
	if err != nil {
		return err
	}
	defer iter.Close()
	for ok := iter.First(); ok; ok = iter.Next() {
		if _, payload, ok := decodeHistRecord(iter.Value()); ok {
			if err := fn(payload); err != nil {
				return err
			}
		}
	}
	return nil
}
