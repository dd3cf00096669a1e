package behavior

import "github.com/antigravity-dev/wodcore/internal/runtime"

// CompletionMode decides when a rounds container is done, independent of
// which child statements it loops across.
type CompletionMode int

const (
	// FixedN completes after TotalRounds full passes: "(3 rounds)".
	FixedN CompletionMode = iota
	// RepScheme completes after RepCountLen passes, one per entry in a rep
	// scheme: "(21-15-9)".
	RepScheme
	// TimeBound never self-completes; a sibling TimerEndingBehavior (in
	// CompleteBlock mode) marks the block Complete from the outside: an
	// AMRAP.
	TimeBound
	// Unbounded never completes on its own.
	Unbounded
)

// RoundsEndBehavior is the single-responsibility aspect that decides
// whether a given round index is the last one. ChildSelectionBehavior
// consults it after every round rollover; it is composed separately so a
// future block type can reuse the same bound-check without the rest of
// child selection.
type RoundsEndBehavior struct {
	BaseBehavior
	Mode        CompletionMode
	TotalRounds uint32
	RepCountLen int
}

// NewRoundsEndBehavior constructs the bound-check for the given mode.
// TotalRounds is read for FixedN; RepCountLen for RepScheme; both are
// ignored otherwise.
func NewRoundsEndBehavior(mode CompletionMode, totalRounds uint32, repCountLen int) *RoundsEndBehavior {
	return &RoundsEndBehavior{Mode: mode, TotalRounds: totalRounds, RepCountLen: repCountLen}
}

// Reached reports whether round (0-indexed, already incremented past the
// round that just finished) is beyond the bound.
func (r *RoundsEndBehavior) Reached(round uint32) bool {
	switch r.Mode {
	case FixedN:
		return round >= r.TotalRounds
	case RepScheme:
		return int(round) >= r.RepCountLen
	default:
		return false
	}
}

var _ runtime.BehaviorHandle = (*RoundsEndBehavior)(nil)
