package behavior

import (
	"time"

	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// CompletionTimestampBehavior records the frozen wall-clock instant a block
// finished, as a Public "completed_at" cell, the moment it unmounts.
type CompletionTimestampBehavior struct {
	BaseBehavior
	Ref memory.TypedRef[time.Time]
}

// NewCompletionTimestampBehavior constructs an unarmed behavior; the cell
// is allocated at mount time so its owner (the block being timestamped) is
// known.
func NewCompletionTimestampBehavior() *CompletionTimestampBehavior {
	return &CompletionTimestampBehavior{}
}

func (c *CompletionTimestampBehavior) OnMount(k runtime.ActionKernel, b *runtime.Block) []Action {
	c.Ref = memory.Allocate(k.Memory(), "completed_at", b.Key, time.Time{}, memory.Public)
	return nil
}

func (c *CompletionTimestampBehavior) OnUnmount(k runtime.ActionKernel, b *runtime.Block) []Action {
	memory.Set(k.Memory(), c.Ref, k.Clock().NowWall())
	return nil
}
