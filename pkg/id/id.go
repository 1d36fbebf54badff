package id

import (
	"strconv"
	"sync"
	"time"
)

// ID is an opaque 64-bit identifier encoded as [44-bit ms timestamp][20-bit
// sequence]. Zero is reserved to mean "not set".
type ID uint64

// Uint64 returns the raw value.
func (i ID) Uint64() uint64 { return uint64(i) }

// String returns the identifier as a decimal string, matching how ids
// render in file lines and relay payloads.
func (i ID) String() string { return strconv.FormatUint(uint64(i), 10) }

const seqBits = 20

// Generator produces monotonically increasing IDs per process.
type Generator struct {
	mu       sync.Mutex
	lastMs   int64
	sequence uint64
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Next returns a new non-zero ID. If the clock goes backwards, it reuses
// lastMs and increments the sequence. If the sequence overflows within the
// same millisecond, it waits for the next one.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}

	if ms == g.lastMs {
		if g.sequence == 1<<seqBits-1 {
			for {
				ms = NowMs()
				if ms > g.lastMs {
					break
				}
				time.Sleep(time.Millisecond / 8)
			}
			g.sequence = 0
		} else {
			g.sequence++
		}
	} else {
		g.sequence = 0
	}

	g.lastMs = ms
	v := ID(uint64(ms)<<seqBits | g.sequence)
	if v == 0 {
		// ms==0 and sequence==0 only happens with a broken clock source.
		g.sequence++
		v = ID(g.sequence)
	}
	return v
}
