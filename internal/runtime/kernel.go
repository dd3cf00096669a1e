package runtime

import (
	"fmt"
	"time"

	"github.com/antigravity-dev/wodcore/internal/clockid"
	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/memory"
)

// frozenClock pins NowWall/NowMono to a single instant for the duration of
// a turn: every behavior hook invoked during that turn observes the same
// time, however long the turn actually takes to run.
type frozenClock struct {
	wall time.Time
	mono time.Duration
	real clockid.Clock
}

func (f frozenClock) NowWall() time.Time { return f.wall }
func (f frozenClock) NowMono() time.Duration { return f.mono }
func (f frozenClock) ElapsedMS(from time.Duration) uint64 {
	elapsed := f.mono - from
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed.Milliseconds())
}

// Runtime is the stack-based execution kernel described by the execution
// core: it owns the Stack, the Store, the output pipeline, and the
// injected Clock/Compiler/metrics sink, and drives every turn to
// quiescence before returning control to its caller.
type Runtime struct {
	stack    *Stack
	store    *memory.Store
	clock    clockid.Clock
	compiler Compiler
	output   *OutputSink
	metrics  MetricSink
	forest   *fragment.Forest

	frozen      *frozenClock
	maxPerTurn  int
	pendingRoot *Block
}

// Options configures a new Runtime.
type Options struct {
	MaxStackDepth     int
	MaxActionsPerTurn int
	Clock             clockid.Clock
	Compiler          Compiler
	Metrics           MetricSink
}

// New constructs a Runtime with an empty stack and store.
func New(opts Options) *Runtime {
	clock := opts.Clock
	if clock == nil {
		clock = clockid.NewSystemClock()
	}
	maxPerTurn := opts.MaxActionsPerTurn
	if maxPerTurn <= 0 {
		maxPerTurn = 4096
	}
	return &Runtime{
		stack:      NewStack(opts.MaxStackDepth),
		store:      memory.NewStore(),
		clock:      clock,
		compiler:   opts.Compiler,
		output:     NewOutputSink(),
		metrics:    opts.Metrics,
		maxPerTurn: maxPerTurn,
	}
}

// ActionKernel implementation. These are only meaningful during a turn, but
// are safe to call at any time (they simply observe the live clock outside
// of one).

func (rt *Runtime) Stack() *Stack          { return rt.stack }
func (rt *Runtime) Memory() *memory.Store  { return rt.store }
func (rt *Runtime) Compiler() Compiler     { return rt.compiler }
func (rt *Runtime) Output() *OutputSink    { return rt.output }
func (rt *Runtime) Metrics() MetricSink    { return rt.metrics }

func (rt *Runtime) Clock() clockid.Clock {
	if rt.frozen != nil {
		return *rt.frozen
	}
	return rt.clock
}

func (rt *Runtime) Dispatch(event Event) []Action {
	return dispatch(rt, rt.store, func() []memory.Ref {
		return rt.store.Search(memory.Criteria{TypeTag: "handler"})
	}, event)
}

// Load compiles source into a root block but does not push it; Start does
// that. Load resets any prior program.
func (rt *Runtime) Load(source string, forest *fragment.Forest, rootIDs []fragment.StatementID) error {
	rt.forest = forest
	if rt.compiler == nil {
		return fmt.Errorf("runtime: no compiler configured")
	}
	block, err := rt.compiler.Compile(rootIDs, forest, rt.store, CompilationContext{})
	if err != nil {
		return err
	}
	rt.pendingRoot = block
	return nil
}

// Start pushes the compiled root block and runs the turn to quiescence.
func (rt *Runtime) Start() {
	if rt.pendingRoot == nil {
		return
	}
	root := rt.pendingRoot
	rt.pendingRoot = nil
	rt.withTurn(func() []Action {
		return []Action{PushBlockAction{Block: root}}
	})
}

// Step issues a "next" request to the current block.
func (rt *Runtime) Step() {
	rt.withTurn(func() []Action {
		return []Action{NextAction{}}
	})
}

// Handle delivers an external event (e.g. "pause") to every registered
// handler and runs the resulting actions to quiescence.
func (rt *Runtime) Handle(event Event) {
	rt.withTurn(func() []Action {
		return rt.Dispatch(event)
	})
}

// Tick delivers the periodic "tick" event used by timer-driven behaviors.
// Callers decide cadence; the runtime itself never schedules its own ticks.
func (rt *Runtime) Tick() {
	rt.Handle(Event{Name: EventTick})
}

// Stop unwinds the stack top to bottom, running each block's unmount and
// dispose hooks.
func (rt *Runtime) Stop() {
	rt.withTurn(func() []Action {
		var actions []Action
		for i, n := 0, rt.stack.Depth(); i < n; i++ {
			actions = append(actions, PopBlockAction{})
		}
		return actions
	})
}

// withTurn freezes the clock for the duration of seed's execution plus
// every action it transitively produces, then releases it.
func (rt *Runtime) withTurn(seed func() []Action) {
	rt.frozen = &frozenClock{
		wall: rt.clock.NowWall(),
		mono: rt.clock.NowMono(),
		real: rt.clock,
	}
	defer func() { rt.frozen = nil }()
	runToQuiescence(rt, seed(), rt.maxPerTurn)
}

// Snapshot describes the runtime's externally observable state at rest,
// between turns.
type Snapshot struct {
	Depth      int
	TopLabel   string
	TopType    string
	TopState   State
}

// Snapshot returns a point-in-time view of the stack for diagnostics and
// UIs; it never mutates runtime state.
func (rt *Runtime) Snapshot() Snapshot {
	top := rt.stack.Top()
	if top == nil {
		return Snapshot{}
	}
	return Snapshot{
		Depth:    rt.stack.Depth(),
		TopLabel: top.Label,
		TopType:  top.BlockType,
		TopState: top.State(),
	}
}
