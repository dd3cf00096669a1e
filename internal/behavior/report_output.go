package behavior

import (
	"time"

	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// ReportOutputBehavior narrates a block's lifecycle as a matched pair of
// OutputStatements: a segment on_mount, a completion on_unmount, both
// carrying the block's source fragments (timestamped at emission) and its
// stack position so a subscriber can reconstruct nesting without walking
// the stack itself. Labels come from a composed LabelingBehavior so the
// two aspects agree on what to call the block.
type ReportOutputBehavior struct {
	BaseBehavior
	Labeling  *LabelingBehavior
	startedAt time.Time
}

// NewReportOutputBehavior constructs a narrator bound to labeling (which
// must be composed on the same block, typically earlier in the aspect
// list so its Label is already set by the time this runs).
func NewReportOutputBehavior(labeling *LabelingBehavior) *ReportOutputBehavior {
	return &ReportOutputBehavior{Labeling: labeling}
}

func (r *ReportOutputBehavior) label() string {
	if r.Labeling == nil {
		return ""
	}
	return r.Labeling.Label
}

func (r *ReportOutputBehavior) stampedFragments(b *runtime.Block, ts time.Time) []fragment.Fragment {
	if len(b.Fragments) == 0 {
		return nil
	}
	out := make([]fragment.Fragment, len(b.Fragments))
	for i, f := range b.Fragments {
		out[i] = fragment.WithTimestamp(f, ts.UnixMilli())
	}
	return out
}

func (r *ReportOutputBehavior) OnMount(k runtime.ActionKernel, b *runtime.Block) []Action {
	r.startedAt = k.Clock().NowWall()
	k.Output().Emit(runtime.OutputStatement{
		Type:           runtime.OutputSegment,
		Message:        "started",
		BlockType:      b.BlockType,
		Label:          r.label(),
		TimeSpan:       runtime.TimeSpan{Started: r.startedAt},
		SourceBlockKey: b.Key,
		StackLevel:     k.Stack().LevelOf(b),
		Fragments:      r.stampedFragments(b, r.startedAt),
	})
	return nil
}

func (r *ReportOutputBehavior) OnUnmount(k runtime.ActionKernel, b *runtime.Block) []Action {
	ended := k.Clock().NowWall()
	k.Output().Emit(runtime.OutputStatement{
		Type:           runtime.OutputCompletion,
		Message:        "finished",
		BlockType:      b.BlockType,
		Label:          r.label(),
		TimeSpan:       runtime.TimeSpan{Started: r.startedAt, Ended: ended},
		SourceBlockKey: b.Key,
		StackLevel:     k.Stack().LevelOf(b),
		Fragments:      r.stampedFragments(b, ended),
	})
	return nil
}
