package compiler

import (
	"fmt"

	"github.com/antigravity-dev/wodcore/internal/fragment"
)

// deriveLabel picks the most descriptive fragment on a statement for
// narration: an action name ("AMRAP", "Rest"), else an effort's raw text
// ("Thrusters"), else a generic fallback naming the statement id.
func deriveLabel(stmt *fragment.Statement) string {
	if a, ok := fragment.FragmentOfType[fragment.ActionFragment](stmt); ok {
		return a.Name
	}
	if e, ok := fragment.FragmentOfType[fragment.EffortFragment](stmt); ok {
		return e.Raw
	}
	if r, ok := fragment.FragmentOfType[fragment.RoundsFragment](stmt); ok {
		if r.Total != nil {
			return fmt.Sprintf("%d rounds", *r.Total)
		}
		return "rounds"
	}
	return fmt.Sprintf("statement-%d", stmt.ID())
}

// hasMeasurableWork reports whether stmt carries a fragment a LeafExitBehavior
// should turn into a recorded metrics.Entry.
func hasMeasurableWork(stmt *fragment.Statement) bool {
	if fragment.HasFragmentType[fragment.EffortFragment](stmt) {
		return true
	}
	if fragment.HasFragmentType[fragment.RepFragment](stmt) {
		return true
	}
	if fragment.HasFragmentType[fragment.ResistanceFragment](stmt) {
		return true
	}
	if fragment.HasFragmentType[fragment.DistanceFragment](stmt) {
		return true
	}
	return false
}
