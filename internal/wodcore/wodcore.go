// Package wodcore is the facade that wires internal/compiler's JIT compiler
// into internal/runtime's kernel, and is the only package that imports
// both. It exposes the external programmatic surface a CLI or embedder
// drives a workout session through: Load, Start, Step, Tick, Handle,
// OnOutput, OnMetric, Snapshot.
package wodcore

import (
	"fmt"

	"github.com/antigravity-dev/wodcore/internal/clockid"
	"github.com/antigravity-dev/wodcore/internal/compiler"
	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/metrics"
	"github.com/antigravity-dev/wodcore/internal/parser"
	"github.com/antigravity-dev/wodcore/internal/resolver"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// Options configures a new Engine. All fields are optional.
type Options struct {
	MaxStackDepth     int
	MaxActionsPerTurn int
	Clock             clockid.Clock
	Resolver          resolver.ExerciseResolver
}

// Engine owns one workout session's compiler, runtime kernel, and metrics
// store, and resolves exercise names consistently at both parse time and
// compile time.
type Engine struct {
	rt       *runtime.Runtime
	compiler *compiler.JitCompiler
	metrics  *metrics.Store
	resolver resolver.ExerciseResolver
	forest   *fragment.Forest
}

// New constructs an Engine ready to Load a script.
func New(opts Options) *Engine {
	res := opts.Resolver
	if res == nil {
		res = resolver.NewStatic()
	}
	metricsStore := metrics.NewStore()
	jc := compiler.NewJitCompiler(res, metricSinkAdapter{metricsStore})

	rt := runtime.New(runtime.Options{
		MaxStackDepth:     opts.MaxStackDepth,
		MaxActionsPerTurn: opts.MaxActionsPerTurn,
		Clock:             opts.Clock,
		Compiler:          jc,
		Metrics:           metricSinkAdapter{metricsStore},
	})

	return &Engine{rt: rt, compiler: jc, metrics: metricsStore, resolver: res}
}

// metricSinkAdapter satisfies runtime.MetricSink by recording into a
// metrics.Store, the shared sink both the compiler's LeafExitBehavior and
// the runtime's dispatcher write through.
type metricSinkAdapter struct{ store *metrics.Store }

func (m metricSinkAdapter) Record(e metrics.Entry) { m.store.Record(e) }

// Load parses source and compiles its root statements into a pending root
// block, ready for Start. Parse diagnostics never fail Load; malformed
// input becomes Text/diagnostic-leaf blocks at execution time.
func (e *Engine) Load(source string) error {
	result := parser.ParseWithResolver(source, e.resolver)
	e.forest = result.Forest

	roots := result.Forest.Roots()
	if len(roots) == 0 {
		return fmt.Errorf("wodcore: source produced no statements")
	}
	return e.rt.Load(source, result.Forest, roots)
}

// Diagnostics re-parses source and returns only its diagnostics, for a
// "lint" style check that never mutates engine state.
func Diagnostics(source string) []parser.Diagnostic {
	return parser.Parse(source).Diagnostics
}

// Start pushes the compiled root block and runs its mount hooks to
// quiescence.
func (e *Engine) Start() { e.rt.Start() }

// Step delivers a manual "next" event to the current block.
func (e *Engine) Step() { e.rt.Step() }

// Tick delivers EventTick; it does not advance the clock.
func (e *Engine) Tick() { e.rt.Tick() }

// Handle delivers an arbitrary event to the dispatcher.
func (e *Engine) Handle(event runtime.Event) { e.rt.Handle(event) }

// Stop unwinds the entire stack, disposing every block.
func (e *Engine) Stop() { e.rt.Stop() }

// OnOutput subscribes fn to every OutputStatement emitted by the runtime.
func (e *Engine) OnOutput(fn func(runtime.OutputStatement)) {
	e.rt.Output().Subscribe(fn)
}

// OnMetric subscribes fn to every metrics.Entry recorded during the
// session. Unlike OnOutput this is delivered after the fact (metrics are
// recorded into the shared store synchronously by LeafExitBehavior); fn is
// invoked once per Record call.
func (e *Engine) OnMetric(fn func(metrics.Entry)) {
	e.metrics.Subscribe(fn)
}

// Snapshot returns a point-in-time view of the runtime stack.
func (e *Engine) Snapshot() runtime.Snapshot { return e.rt.Snapshot() }

// SessionTotals summarizes every metric recorded so far.
func (e *Engine) SessionTotals() metrics.SessionTotals { return e.metrics.SessionTotals() }

// Forest returns the statement forest produced by the most recent Load.
func (e *Engine) Forest() *fragment.Forest { return e.forest }
