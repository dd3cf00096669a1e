package behavior

import (
	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// ChildSelectionBehavior is the loop coordinator: it walks one or more
// child statement groups, round by round, compiling and pushing the next
// child on every on_next call until its RoundsEnd says to stop. When more
// than one child group is present the spec leaves the exact pairing open;
// this implementation round-robins groups by round index modulo the group
// count and narrates the choice as a diagnostic the first time it applies.
type ChildSelectionBehavior struct {
	BaseBehavior
	ChildGroups [][]fragment.StatementID
	Forest      *fragment.Forest
	RoundsEnd   *RoundsEndBehavior
	RepCounts   []uint32
	Seed        runtime.CompilationContext

	positionRef memory.TypedRef[uint32]
	roundRef    memory.TypedRef[uint32]
	warnedMulti bool
}

// NewChildSelectionBehavior constructs the loop coordinator for a block
// compiled from a statement with the given child groups. roundsEnd decides
// when the loop is done; repCounts, if non-nil, supplies the per-round
// inherited rep count for a RepScheme-mode rounds container.
func NewChildSelectionBehavior(groups [][]fragment.StatementID, forest *fragment.Forest, roundsEnd *RoundsEndBehavior, repCounts []uint32, seed runtime.CompilationContext) *ChildSelectionBehavior {
	return &ChildSelectionBehavior{
		ChildGroups: groups,
		Forest:      forest,
		RoundsEnd:   roundsEnd,
		RepCounts:   repCounts,
		Seed:        seed,
	}
}

func (c *ChildSelectionBehavior) OnMount(k runtime.ActionKernel, b *runtime.Block) []Action {
	c.positionRef = memory.Allocate(k.Memory(), "position", b.Key, uint32(0), memory.Public)
	c.roundRef = memory.Allocate(k.Memory(), "round", b.Key, uint32(0), memory.Public)
	return c.OnNext(k, b)
}

func (c *ChildSelectionBehavior) OnNext(k runtime.ActionKernel, b *runtime.Block) []Action {
	if len(c.ChildGroups) == 0 {
		return []Action{runtime.MarkCompleteAction{}}
	}
	if b.State() == runtime.StateComplete {
		return nil
	}

	round, _ := memory.Get(k.Memory(), c.roundRef)
	position, _ := memory.Get(k.Memory(), c.positionRef)

	groupIdx := int(round) % len(c.ChildGroups)
	if len(c.ChildGroups) > 1 && !c.warnedMulti {
		c.warnedMulti = true
		k.Output().Emit(runtime.OutputStatement{
			Type:    runtime.OutputSystem,
			Message: "multiple child groups present; selecting round-robin by round index",
		})
	}
	group := c.ChildGroups[groupIdx]

	if int(position) >= len(group) {
		round++
		position = 0
		memory.Set(k.Memory(), c.roundRef, round)
		memory.Set(k.Memory(), c.positionRef, position)

		if c.RoundsEnd != nil && c.RoundsEnd.Reached(round) {
			return []Action{runtime.MarkCompleteAction{}}
		}
		groupIdx = int(round) % len(c.ChildGroups)
		group = c.ChildGroups[groupIdx]
		if len(group) == 0 {
			return []Action{runtime.MarkCompleteAction{}}
		}
		memory.Set(k.Memory(), c.positionRef, uint32(1))
		return append(
			[]Action{runtime.EmitEventAction{Event: runtime.Event{Name: runtime.EventRoundChanged}}},
			c.pushChild(k, group[0], round)...,
		)
	}

	memory.Set(k.Memory(), c.positionRef, position+1)
	return c.pushChild(k, group[position], round)
}

func (c *ChildSelectionBehavior) pushChild(k runtime.ActionKernel, id fragment.StatementID, round uint32) []Action {
	ctx := c.Seed
	ctx.Round = round
	if c.RepCounts != nil && int(round) < len(c.RepCounts) {
		reps := c.RepCounts[round]
		ctx.InheritedReps = &reps
	}

	block, err := k.Compiler().Compile([]fragment.StatementID{id}, c.Forest, k.Memory(), ctx)
	if err != nil {
		return []Action{runtime.ErrorAction{Err: err}}
	}
	return []Action{runtime.PushBlockAction{Block: block}}
}
