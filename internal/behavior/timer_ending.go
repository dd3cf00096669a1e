package behavior

import (
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// EndMode decides what happens when a TimerBehavior's count-down expires.
type EndMode int

const (
	// CompleteBlock marks the owning block complete: a timed effort or
	// a [:Rest] block that simply ends when its clock runs out.
	CompleteBlock EndMode = iota
	// ResetInterval restarts the timer and emits round:changed instead of
	// completing: an EMOM interval, or a [:Tabata] work/rest toggle.
	ResetInterval
)

// TimerEndingBehavior reacts to timer:expired (raised by a sibling
// TimerBehavior on the same block) according to its configured EndMode.
type TimerEndingBehavior struct {
	BaseBehavior
	Timer *TimerBehavior
	Mode  EndMode
}

// NewTimerEndingBehavior binds to timer (which must be composed on the same
// block) and the completion mode to apply when it expires.
func NewTimerEndingBehavior(timer *TimerBehavior, mode EndMode) *TimerEndingBehavior {
	return &TimerEndingBehavior{Timer: timer, Mode: mode}
}

func (e *TimerEndingBehavior) RegisterHandlers(k runtime.ActionKernel, b *runtime.Block) {
	memory.Allocate(k.Memory(), "handler", b.Key, runtime.Handler{
		Event: "timer:expired",
		Fn:    e.onExpired,
	}, memory.Public)
}

func (e *TimerEndingBehavior) onExpired(k runtime.ActionKernel, ev runtime.Event) []Action {
	switch e.Mode {
	case ResetInterval:
		e.Timer.Reset(k)
		return []Action{runtime.EmitEventAction{Event: runtime.Event{Name: runtime.EventRoundChanged}}}
	default:
		return []Action{runtime.MarkCompleteAction{}}
	}
}
