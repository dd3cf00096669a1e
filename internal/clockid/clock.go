// Package clockid provides the injectable clock and block-identity primitives
// shared by every other wodcore package. No component may read system time
// or mint identity any other way.
package clockid

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Clock is the sole source of time for the runtime. All timestamps embedded
// in fragments, spans, and output statements come from a Clock.
type Clock interface {
	// NowWall returns the current wall-clock time.
	NowWall() time.Time
	// NowMono returns a monotonic instant, comparable only to other values
	// returned by the same Clock.
	NowMono() time.Duration
	// ElapsedMS returns the number of milliseconds elapsed since from, as
	// measured by NowMono.
	ElapsedMS(from time.Duration) uint64
}

// SystemClock is the production Clock backed by the OS clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock anchored to the moment of construction.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) NowWall() time.Time { return time.Now() }

func (c *SystemClock) NowMono() time.Duration { return time.Since(c.start) }

func (c *SystemClock) ElapsedMS(from time.Duration) uint64 {
	elapsed := c.NowMono() - from
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed.Milliseconds())
}

// TestClock is a manually-advanced Clock for deterministic tests. The zero
// value is ready to use, anchored at the zero time.Time (January 1, year 1 UTC).
type TestClock struct {
	wall time.Time
	mono time.Duration
}

// NewTestClock returns a TestClock anchored at the given wall-clock time.
func NewTestClock(wall time.Time) *TestClock {
	return &TestClock{wall: wall}
}

func (c *TestClock) NowWall() time.Time { return c.wall }

func (c *TestClock) NowMono() time.Duration { return c.mono }

func (c *TestClock) ElapsedMS(from time.Duration) uint64 {
	elapsed := c.mono - from
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed.Milliseconds())
}

// Advance moves the clock forward by d, advancing both wall and monotonic
// views together.
func (c *TestClock) Advance(d time.Duration) {
	c.wall = c.wall.Add(d)
	c.mono += d
}

// Set pins the wall-clock view to t without touching the monotonic view.
// Used by tests that only care about wall-clock timestamps on output.
func (c *TestClock) Set(t time.Time) {
	c.wall = t
}

// BlockKey is an opaque, globally unique, monotonically minted identifier
// for a runtime Block. Equality is by identity (the full struct), never by
// the printable form alone.
type BlockKey struct {
	seq    uint64
	unique string
}

var blockSeq atomic.Uint64

// NewBlockKey mints a new, globally unique BlockKey. The sequence number
// guarantees mint order is recoverable for diagnostics; the uuid suffix
// guarantees global uniqueness without a shared counter across processes.
func NewBlockKey() BlockKey {
	seq := blockSeq.Add(1)
	return BlockKey{seq: seq, unique: uuid.NewString()}
}

// Sequence returns the monotonic mint order of the key, for diagnostics and
// deterministic test assertions (never for identity comparisons).
func (k BlockKey) Sequence() uint64 { return k.seq }

// String renders a printable, diagnostic-friendly form: "blk-<seq>-<uuid8>".
func (k BlockKey) String() string {
	short := k.unique
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("blk-%d-%s", k.seq, short)
}

// Zero reports whether k is the unminted zero value.
func (k BlockKey) Zero() bool { return k.seq == 0 && k.unique == "" }
