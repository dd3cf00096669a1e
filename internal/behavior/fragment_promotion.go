package behavior

import (
	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// FragmentPromotionBehavior resolves a leaf's effective reps and
// resistance: its own statement's fragment if it has one, otherwise the
// value inherited from an enclosing rounds container (a rep scheme's
// per-round count, a carried-forward resistance). It publishes the
// resolved values so ReportOutputBehavior and LeafExitBehavior's metric
// emission don't each have to re-derive inheritance.
type FragmentPromotionBehavior struct {
	BaseBehavior
	OwnReps             *uint32
	OwnResistance        *fragment.ResistanceFragment
	InheritedReps        *uint32
	InheritedResistance  *fragment.ResistanceFragment

	RepsRef       memory.TypedRef[uint32]
	ResistanceRef memory.TypedRef[fragment.ResistanceFragment]
}

// NewFragmentPromotionBehavior constructs the resolver from a leaf's own
// fragments (nil if absent) and the inherited context propagated down by
// its parent's ChildSelectionBehavior.
func NewFragmentPromotionBehavior(ownReps *uint32, ownResistance *fragment.ResistanceFragment, ctx runtime.CompilationContext) *FragmentPromotionBehavior {
	return &FragmentPromotionBehavior{
		OwnReps:             ownReps,
		OwnResistance:       ownResistance,
		InheritedReps:       ctx.InheritedReps,
		InheritedResistance: ctx.InheritedResistance,
	}
}

// EffectiveReps returns the leaf's own rep count, falling back to what it
// inherited, or 0 if neither is present.
func (f *FragmentPromotionBehavior) EffectiveReps() uint32 {
	if f.OwnReps != nil {
		return *f.OwnReps
	}
	if f.InheritedReps != nil {
		return *f.InheritedReps
	}
	return 0
}

// EffectiveResistance returns the leaf's own resistance, falling back to
// the inherited one, or the zero value if neither is present.
func (f *FragmentPromotionBehavior) EffectiveResistance() (fragment.ResistanceFragment, bool) {
	if f.OwnResistance != nil {
		return *f.OwnResistance, true
	}
	if f.InheritedResistance != nil {
		return *f.InheritedResistance, true
	}
	return fragment.ResistanceFragment{}, false
}

func (f *FragmentPromotionBehavior) OnMount(k runtime.ActionKernel, b *runtime.Block) []Action {
	f.RepsRef = memory.Allocate(k.Memory(), "effective_reps", b.Key, f.EffectiveReps(), memory.Public)
	if r, ok := f.EffectiveResistance(); ok {
		f.ResistanceRef = memory.Allocate(k.Memory(), "effective_resistance", b.Key, r, memory.Public)
	}
	return nil
}
