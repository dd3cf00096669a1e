package compiler

import (
	"fmt"

	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// Strategy recognizes one shape of statement and builds the block for it.
// The registry tries strategies in order and uses the first match;
// ordering encodes specificity (a timed rounds container must be tried
// before a bare rounds container, which must be tried before a bare leaf).
type Strategy interface {
	Matches(stmt *fragment.Statement) bool
	Build(jc *JitCompiler, stmt *fragment.Statement, forest *fragment.Forest, ctx runtime.CompilationContext) (*runtime.Block, error)
}

// DefaultStrategies returns the six ordered strategies the JIT compiler
// uses out of the box, most specific first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		timedActionStrategy{},
		roundsContainerStrategy{},
		timedLeafStrategy{},
		leafEffortStrategy{},
		groupFallbackStrategy{},
		diagnosticLeafStrategy{},
	}
}

// errNoStrategyMatched builds the error returned when every strategy in the registry
// declines a statement; diagnosticLeafStrategy matching everything means
// this should never happen in practice, but Compile still guards for it.
func errNoStrategyMatched(id fragment.StatementID) error {
	return fmt.Errorf("compiler: no strategy matched statement %d", id)
}
