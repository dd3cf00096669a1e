package compiler

import (
	"fmt"

	"github.com/antigravity-dev/wodcore/internal/behavior"
	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/resolver"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// JitCompiler is the strategy-dispatching compiler: runtime.Compiler is
// satisfied structurally so internal/runtime never imports this package.
type JitCompiler struct {
	Strategies []Strategy
	Resolver   resolver.ExerciseResolver
	Metrics    runtime.MetricSink

	reentry map[fragment.StatementID]*behavior.ReEntryState
}

// NewJitCompiler constructs a compiler with the default strategy registry.
func NewJitCompiler(res resolver.ExerciseResolver, metrics runtime.MetricSink) *JitCompiler {
	if res == nil {
		res = resolver.NewStatic()
	}
	return &JitCompiler{
		Strategies: DefaultStrategies(),
		Resolver:   res,
		Metrics:    metrics,
		reentry:    make(map[fragment.StatementID]*behavior.ReEntryState),
	}
}

// Compile satisfies runtime.Compiler: ids must name exactly one statement,
// which is looked up in forest and dispatched to the first matching
// strategy.
func (jc *JitCompiler) Compile(ids []fragment.StatementID, forest *fragment.Forest, store *memory.Store, ctx runtime.CompilationContext) (*runtime.Block, error) {
	if len(ids) != 1 {
		return nil, fmt.Errorf("compiler: expected exactly one statement id, got %d", len(ids))
	}
	stmt := forest.Get(ids[0])
	if stmt == nil {
		return nil, fmt.Errorf("compiler: unknown statement %d", ids[0])
	}
	for _, s := range jc.Strategies {
		if s.Matches(stmt) {
			return s.Build(jc, stmt, forest, ctx)
		}
	}
	return nil, errNoStrategyMatched(ids[0])
}

// reentryStateFor returns the ReEntryState shared by every compilation of
// the same source statement, creating it on first use.
func (jc *JitCompiler) reentryStateFor(id fragment.StatementID) *behavior.ReEntryState {
	if s, ok := jc.reentry[id]; ok {
		return s
	}
	s := &behavior.ReEntryState{}
	jc.reentry[id] = s
	return s
}
