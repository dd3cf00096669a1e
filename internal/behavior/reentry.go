package behavior

import (
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// ReEntryState is the state that survives across repeated compilations of
// "the same" statement: a block's own memory cells are released on pop, so
// anything that must persist across rounds (an EMOM interval re-entering
// its rest block every minute, say) lives in a ReEntryState the compiler
// hands to every instance it builds from that statement.
type ReEntryState struct {
	EntryCount int
}

// ReEntryBehavior increments and publishes the shared EntryCount every time
// its block is mounted, letting output/report behaviors distinguish "first
// time through" from a later lap without depending on block identity.
type ReEntryBehavior struct {
	BaseBehavior
	Shared *ReEntryState
	Ref    memory.TypedRef[int]

	entry int
}

// NewReEntryBehavior binds to a ReEntryState shared across every
// compilation of the same source statement.
func NewReEntryBehavior(shared *ReEntryState) *ReEntryBehavior {
	return &ReEntryBehavior{Shared: shared}
}

func (r *ReEntryBehavior) OnMount(k runtime.ActionKernel, b *runtime.Block) []Action {
	r.Shared.EntryCount++
	r.entry = r.Shared.EntryCount
	r.Ref = memory.Allocate(k.Memory(), "reentry_count", b.Key, r.Shared.EntryCount, memory.Public)
	return nil
}

// IsFirstEntry reports whether this is the statement's first compilation
// into a block this session.
func (r *ReEntryBehavior) IsFirstEntry() bool {
	if r.entry != 0 {
		return r.entry == 1
	}
	return r.Shared.EntryCount == 0
}
