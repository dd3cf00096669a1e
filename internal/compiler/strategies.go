package compiler

import (
	"github.com/antigravity-dev/wodcore/internal/behavior"
	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/metrics"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// ownRepsAndResistance extracts a statement's own RepFragment/
// ResistanceFragment, if present, as the pointers FragmentPromotionBehavior
// expects.
func ownRepsAndResistance(stmt *fragment.Statement) (*uint32, *fragment.ResistanceFragment) {
	var reps *uint32
	if r, ok := fragment.FragmentOfType[fragment.RepFragment](stmt); ok {
		v := r.Count
		reps = &v
	}
	var resistance *fragment.ResistanceFragment
	if r, ok := fragment.FragmentOfType[fragment.ResistanceFragment](stmt); ok {
		resistance = &r
	}
	return reps, resistance
}

// buildLeafExit constructs the LeafExitBehavior for stmt, resolving its
// exercise id through jc.Resolver and folding in FragmentPromotion's
// effective reps/resistance, plus any DistanceFragment or (for a held
// static position like a plank) TimerFragment duration.
func buildLeafExit(jc *JitCompiler, stmt *fragment.Statement, fp *behavior.FragmentPromotionBehavior) *behavior.LeafExitBehavior {
	if !hasMeasurableWork(stmt) && !fragment.HasFragmentType[fragment.TimerFragment](stmt) {
		return behavior.NewLeafExitBehavior(metrics.Entry{}, false)
	}

	entry := metrics.Entry{SourceIDs: []fragment.StatementID{stmt.ID()}}

	if e, ok := fragment.FragmentOfType[fragment.EffortFragment](stmt); ok {
		if e.ExerciseID != nil {
			entry.ExerciseID = *e.ExerciseID
		} else {
			entry.ExerciseID = jc.Resolver.Resolve(e.Raw)
		}
	}
	entry.Reps = fp.EffectiveReps()
	if r, ok := fp.EffectiveResistance(); ok {
		entry.ResistanceKG = r.NormalizedKG
	}
	if d, ok := fragment.FragmentOfType[fragment.DistanceFragment](stmt); ok {
		entry.DistanceM = d.NormalizedM
	}
	if t, ok := fragment.FragmentOfType[fragment.TimerFragment](stmt); ok {
		entry.DurationMS = t.Milliseconds
	}
	return behavior.NewLeafExitBehavior(entry, true)
}

// composeLeaf assembles the standard leaf aspect chain shared by every
// strategy that ends in a childless block.
func composeLeaf(jc *JitCompiler, stmt *fragment.Statement, ctx runtime.CompilationContext, blockType string) *runtime.Block {
	ownReps, ownResistance := ownRepsAndResistance(stmt)
	fp := behavior.NewFragmentPromotionBehavior(ownReps, ownResistance, ctx)
	label := behavior.NewLabelingBehavior(deriveLabel(stmt))

	b := NewBlockBuilder(blockType, []fragment.StatementID{stmt.ID()}).
		WithFragments(stmt.Fragments()).
		With(label).
		With(fp).
		With(behavior.NewReportOutputBehavior(label)).
		With(behavior.NewCompletionTimestampBehavior()).
		With(buildLeafExit(jc, stmt, fp))
	return b.Build()
}

// childGroupsOf returns stmt's child statement-id groups, or nil for a
// leaf.
func childGroupsOf(stmt *fragment.Statement) [][]fragment.StatementID {
	return stmt.Children()
}

// --- 1. timedActionStrategy -------------------------------------------------

// timedActionStrategy matches a statement carrying an ActionFragment paired
// with a TimerFragment ("20:00 [:AMRAP]", "[:EMOM] 10:00"), or a bare
// "[:For Time]" action with no timer literal at all (a count-up workout with
// no cap). The action name decides the timer's direction and what its
// expiry means for the block: AMRAP/For Time complete the block (For Time
// counts up and so never actually expires; completion comes from its
// children exhausting instead), EMOM/Tabata reset it for another interval.
type timedActionStrategy struct{}

func (timedActionStrategy) Matches(stmt *fragment.Statement) bool {
	action, hasAction := fragment.FragmentOfType[fragment.ActionFragment](stmt)
	if !hasAction {
		return false
	}
	if fragment.HasFragmentType[fragment.TimerFragment](stmt) {
		return true
	}
	// A bare "[:For Time]" carries no timer literal of its own: per the
	// count-up-timer precedence decision, it is still this strategy's to
	// compose, just with an unbounded, direction=up timer.
	return action.Name == "For Time"
}

func (timedActionStrategy) Build(jc *JitCompiler, stmt *fragment.Statement, forest *fragment.Forest, ctx runtime.CompilationContext) (*runtime.Block, error) {
	timerFrag, hasTimer := fragment.FragmentOfType[fragment.TimerFragment](stmt)
	action, _ := fragment.FragmentOfType[fragment.ActionFragment](stmt)

	direction := fragment.DirectionDown
	mode := behavior.CompleteBlock
	var durationMS uint64
	if hasTimer {
		durationMS = timerFrag.Milliseconds
	}
	switch action.Name {
	case "EMOM", "Tabata":
		mode = behavior.ResetInterval
	case "AMRAP":
		mode = behavior.CompleteBlock
	case "For Time":
		direction = fragment.DirectionUp
		mode = behavior.CompleteBlock
	}

	timer := behavior.NewTimerBehavior(durationMS, direction)
	ending := behavior.NewTimerEndingBehavior(timer, mode)
	label := behavior.NewLabelingBehavior(deriveLabel(stmt))

	groups := childGroupsOf(stmt)
	builder := NewBlockBuilder("timed-action", []fragment.StatementID{stmt.ID()}).
		WithFragments(stmt.Fragments()).
		With(label).
		With(timer).
		With(ending).
		With(behavior.NewReportOutputBehavior(label)).
		With(behavior.NewCompletionTimestampBehavior())

	if len(groups) == 0 {
		ownReps, ownResistance := ownRepsAndResistance(stmt)
		fp := behavior.NewFragmentPromotionBehavior(ownReps, ownResistance, ctx)
		builder.With(fp).With(buildLeafExit(jc, stmt, fp))
		return builder.Build(), nil
	}

	// A count-up "For Time" container completes when its own rounds/rep
	// scheme (if any) is exhausted, not on a timer expiry that will never
	// fire for a direction=up timer; everything else (AMRAP) is bounded
	// from the outside by its count-down timer, so its container never
	// self-completes on round count.
	roundsEnd := behavior.NewRoundsEndBehavior(behavior.TimeBound, 0, 0)
	if direction == fragment.DirectionUp {
		if rf, ok := fragment.FragmentOfType[fragment.RoundsFragment](stmt); ok {
			switch {
			case rf.RepScheme != nil:
				roundsEnd = behavior.NewRoundsEndBehavior(behavior.RepScheme, 0, len(rf.RepScheme.Counts))
			case rf.Total != nil:
				roundsEnd = behavior.NewRoundsEndBehavior(behavior.FixedN, *rf.Total, 0)
			default:
				roundsEnd = behavior.NewRoundsEndBehavior(behavior.Unbounded, 0, 0)
			}
		} else {
			roundsEnd = behavior.NewRoundsEndBehavior(behavior.Unbounded, 0, 0)
		}
	}
	var repCounts []uint32
	if rf, ok := fragment.FragmentOfType[fragment.RoundsFragment](stmt); ok && rf.RepScheme != nil {
		repCounts = rf.RepScheme.Counts
	}
	cs := behavior.NewChildSelectionBehavior(groups, forest, roundsEnd, repCounts, ctx)
	builder.With(roundsEnd).With(cs)
	return builder.Build(), nil
}

// --- 2. roundsContainerStrategy ---------------------------------------------

// roundsContainerStrategy matches a bounded or rep-scheme rounds container:
// "(3 rounds)", "(21-15-9)".
type roundsContainerStrategy struct{}

func (roundsContainerStrategy) Matches(stmt *fragment.Statement) bool {
	return fragment.HasFragmentType[fragment.RoundsFragment](stmt)
}

func (roundsContainerStrategy) Build(jc *JitCompiler, stmt *fragment.Statement, forest *fragment.Forest, ctx runtime.CompilationContext) (*runtime.Block, error) {
	rf, _ := fragment.FragmentOfType[fragment.RoundsFragment](stmt)
	label := behavior.NewLabelingBehavior(deriveLabel(stmt))

	var roundsEnd *behavior.RoundsEndBehavior
	var repCounts []uint32
	switch {
	case rf.RepScheme != nil:
		roundsEnd = behavior.NewRoundsEndBehavior(behavior.RepScheme, 0, len(rf.RepScheme.Counts))
		repCounts = rf.RepScheme.Counts
	case rf.Total != nil:
		roundsEnd = behavior.NewRoundsEndBehavior(behavior.FixedN, *rf.Total, 0)
	default:
		roundsEnd = behavior.NewRoundsEndBehavior(behavior.Unbounded, 0, 0)
	}

	cs := behavior.NewChildSelectionBehavior(childGroupsOf(stmt), forest, roundsEnd, repCounts, ctx)

	builder := NewBlockBuilder("rounds", []fragment.StatementID{stmt.ID()}).
		WithFragments(stmt.Fragments()).
		With(label).
		With(behavior.NewReportOutputBehavior(label)).
		With(behavior.NewCompletionTimestampBehavior()).
		With(roundsEnd).
		With(cs)
	return builder.Build(), nil
}

// --- 3. timedLeafStrategy ----------------------------------------------------

// timedLeafStrategy matches a timer with no rounds container and no
// children: a held static position (":45 Plank Hold"). A rest marker such
// as "[:Rest] 2:00" carries an action, so timedActionStrategy claims it
// first. Its own timer expiry always completes the
// block; ReEntryBehavior is composed too since these are exactly the
// blocks an EMOM interval recompiles every round.
type timedLeafStrategy struct{}

func (timedLeafStrategy) Matches(stmt *fragment.Statement) bool {
	return fragment.HasFragmentType[fragment.TimerFragment](stmt) &&
		!fragment.HasFragmentType[fragment.RoundsFragment](stmt) &&
		!stmt.HasChildren()
}

func (timedLeafStrategy) Build(jc *JitCompiler, stmt *fragment.Statement, forest *fragment.Forest, ctx runtime.CompilationContext) (*runtime.Block, error) {
	timerFrag, _ := fragment.FragmentOfType[fragment.TimerFragment](stmt)
	timer := behavior.NewTimerBehavior(timerFrag.Milliseconds, fragment.DirectionDown)
	ending := behavior.NewTimerEndingBehavior(timer, behavior.CompleteBlock)
	label := behavior.NewLabelingBehavior(deriveLabel(stmt))
	reentry := behavior.NewReEntryBehavior(jc.reentryStateFor(stmt.ID()))

	ownReps, ownResistance := ownRepsAndResistance(stmt)
	fp := behavior.NewFragmentPromotionBehavior(ownReps, ownResistance, ctx)

	builder := NewBlockBuilder("timed-leaf", []fragment.StatementID{stmt.ID()}).
		WithFragments(stmt.Fragments()).
		With(label).
		With(reentry).
		With(timer).
		With(ending).
		With(fp).
		With(behavior.NewReportOutputBehavior(label)).
		With(behavior.NewCompletionTimestampBehavior()).
		With(buildLeafExit(jc, stmt, fp))
	return builder.Build(), nil
}

// --- 4. leafEffortStrategy ---------------------------------------------------

// leafEffortStrategy matches a plain measurable leaf with no timer, no
// rounds, and no children: "21 Thrusters 95lb".
type leafEffortStrategy struct{}

func (leafEffortStrategy) Matches(stmt *fragment.Statement) bool {
	return !stmt.HasChildren() &&
		!fragment.HasFragmentType[fragment.TimerFragment](stmt) &&
		!fragment.HasFragmentType[fragment.RoundsFragment](stmt) &&
		hasMeasurableWork(stmt)
}

func (leafEffortStrategy) Build(jc *JitCompiler, stmt *fragment.Statement, forest *fragment.Forest, ctx runtime.CompilationContext) (*runtime.Block, error) {
	return composeLeaf(jc, stmt, ctx, "leaf-effort"), nil
}

// --- 5. groupFallbackStrategy -------------------------------------------------

// groupFallbackStrategy matches any statement with children that none of
// the timed/rounds strategies claimed: a bare indentation group with no
// fragment of its own.
type groupFallbackStrategy struct{}

func (groupFallbackStrategy) Matches(stmt *fragment.Statement) bool {
	return stmt.HasChildren()
}

func (groupFallbackStrategy) Build(jc *JitCompiler, stmt *fragment.Statement, forest *fragment.Forest, ctx runtime.CompilationContext) (*runtime.Block, error) {
	label := behavior.NewLabelingBehavior(deriveLabel(stmt))
	roundsEnd := behavior.NewRoundsEndBehavior(behavior.Unbounded, 0, 0)
	cs := behavior.NewChildSelectionBehavior(childGroupsOf(stmt), forest, roundsEnd, nil, ctx)

	builder := NewBlockBuilder("group", []fragment.StatementID{stmt.ID()}).
		WithFragments(stmt.Fragments()).
		With(label).
		With(behavior.NewReportOutputBehavior(label)).
		With(behavior.NewCompletionTimestampBehavior()).
		With(roundsEnd).
		With(cs)
	return builder.Build(), nil
}

// --- 6. diagnosticLeafStrategy ------------------------------------------------

// diagnosticLeafStrategy is the catch-all: any remaining childless
// statement (a bare Text fragment from a parse diagnostic, or an empty
// line that somehow reached the compiler) becomes a no-op leaf that
// completes on its first on_next.
type diagnosticLeafStrategy struct{}

func (diagnosticLeafStrategy) Matches(stmt *fragment.Statement) bool { return true }

func (diagnosticLeafStrategy) Build(jc *JitCompiler, stmt *fragment.Statement, forest *fragment.Forest, ctx runtime.CompilationContext) (*runtime.Block, error) {
	return composeLeaf(jc, stmt, ctx, "diagnostic-leaf"), nil
}
