package runtime

import (
	"sync"
	"time"

	"github.com/antigravity-dev/wodcore/internal/clockid"
	"github.com/antigravity-dev/wodcore/internal/fragment"
)

// OutputType classifies an OutputStatement for downstream consumers (a CLI,
// a websocket bridge, a test harness, history persistence).
type OutputType int

const (
	// OutputSegment narrates a block mounting: the start of one unit of
	// work or rest.
	OutputSegment OutputType = iota
	// OutputCompletion narrates a block unmounting: the matching end of
	// the segment it opened.
	OutputCompletion
	// OutputMilestone narrates an intra-block event that is not itself a
	// segment boundary, such as a round changing.
	OutputMilestone
	// OutputLabel narrates a block's resolved display label becoming
	// available.
	OutputLabel
	// OutputMetric narrates a recorded measurement alongside its entry in
	// the metrics store, so a single subscriber can render the whole
	// session without also subscribing to metrics.Store.
	OutputMetric
	// OutputSystem carries diagnostic or error narration not tied to a
	// specific block's lifecycle.
	OutputSystem
)

func (t OutputType) String() string {
	switch t {
	case OutputSegment:
		return "segment"
	case OutputCompletion:
		return "completion"
	case OutputMilestone:
		return "milestone"
	case OutputLabel:
		return "label"
	case OutputMetric:
		return "metric"
	case OutputSystem:
		return "system"
	default:
		return "unknown"
	}
}

// TimeSpan brackets an OutputStatement's duration. Ended is the zero time
// for statements that narrate an instant (a milestone, a label, a metric)
// rather than a bracketed span.
type TimeSpan struct {
	Started time.Time
	Ended   time.Time
}

// OutputStatement is the wire-level record emitted to subscribers: one
// structured entry about what the runtime just did, carrying enough of the
// source statement's fragments to render, analyze, or persist it without
// re-parsing the script.
type OutputStatement struct {
	Type           OutputType
	Message        string
	BlockType      string
	Label          string
	TimeSpan       TimeSpan
	SourceBlockKey clockid.BlockKey
	StackLevel     int
	Fragments      []fragment.Fragment
}

// OutputSink fans a stream of OutputStatements out to subscribers,
// synchronously and in subscription order, mirroring memory.Store's
// notification model.
type OutputSink struct {
	mu        sync.Mutex
	listeners []func(OutputStatement)
}

// NewOutputSink constructs an empty sink.
func NewOutputSink() *OutputSink {
	return &OutputSink{}
}

// Subscribe registers a callback invoked synchronously for every emitted
// statement, in registration order.
func (s *OutputSink) Subscribe(fn func(OutputStatement)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Emit delivers stmt to every subscriber.
func (s *OutputSink) Emit(stmt OutputStatement) {
	s.mu.Lock()
	listeners := make([]func(OutputStatement), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(stmt)
	}
}
