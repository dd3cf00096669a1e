package behavior

import (
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// LabelingBehavior sets a block's human-readable Label at mount time and
// publishes it as a Public "label" cell so sibling and ancestor behaviors
// (report-output, a UI) can read it without reaching into the block
// directly.
type LabelingBehavior struct {
	BaseBehavior
	Label string
	Ref   memory.TypedRef[string]
}

// NewLabelingBehavior constructs a LabelingBehavior that will publish label.
func NewLabelingBehavior(label string) *LabelingBehavior {
	return &LabelingBehavior{Label: label}
}

func (lb *LabelingBehavior) OnMount(k runtime.ActionKernel, b *runtime.Block) []Action {
	b.Label = lb.Label
	lb.Ref = memory.Allocate(k.Memory(), "label", b.Key, lb.Label, memory.Public)
	return nil
}
