package behavior

import (
	"github.com/antigravity-dev/wodcore/internal/metrics"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// LeafExitBehavior completes a block with no children the first time
// on_next is called, optionally recording a metric entry for the work the
// leaf represents (reps, resistance, distance). Composed only on blocks
// the JIT compiler determined have no child groups.
type LeafExitBehavior struct {
	BaseBehavior
	Entry     metrics.Entry
	HasMetric bool
}

// NewLeafExitBehavior constructs a leaf-exit aspect. Pass hasMetric=false
// for leaves that carry no measurable work (e.g. a bare rest marker).
func NewLeafExitBehavior(entry metrics.Entry, hasMetric bool) *LeafExitBehavior {
	return &LeafExitBehavior{Entry: entry, HasMetric: hasMetric}
}

func (l *LeafExitBehavior) OnNext(k runtime.ActionKernel, b *runtime.Block) []Action {
	actions := []Action{runtime.MarkCompleteAction{}}
	if l.HasMetric && k.Metrics() != nil {
		entry := l.Entry
		entry.RecordedAt = k.Clock().NowWall()
		entry.BlockKey = b.Key
		actions = append(actions, runtime.EmitMetricAction{Sink: k.Metrics(), Metric: entry})
	}
	return actions
}
