package behavior

import (
	"time"

	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// TimerState is the published shape of a running timer: how long it has
// been (or will be) running, and which way it counts.
type TimerState struct {
	StartMono  time.Duration
	DurationMS uint64
	Direction  fragment.Direction
	Paused     bool
}

// TimerBehavior tracks elapsed (count-up, "For Time") or remaining
// (count-down, a timed effort or EMOM interval) duration for its block. It
// registers a "tick" handler that, for a count-down timer, emits
// timer:expired once DurationMS has elapsed; TimerEndingBehavior is the
// aspect that decides what that means for the block.
type TimerBehavior struct {
	BaseBehavior
	DurationMS uint64
	Direction  fragment.Direction
	Ref        memory.TypedRef[TimerState]
}

// NewTimerBehavior constructs a timer for durationMS milliseconds counting
// in the given direction. durationMS is ignored (treated as unbounded) for
// an Up-direction (count-up, open-ended) timer.
func NewTimerBehavior(durationMS uint64, direction fragment.Direction) *TimerBehavior {
	return &TimerBehavior{DurationMS: durationMS, Direction: direction}
}

func (t *TimerBehavior) OnMount(k runtime.ActionKernel, b *runtime.Block) []Action {
	t.Ref = memory.Allocate(k.Memory(), "timer", b.Key, TimerState{
		StartMono:  k.Clock().NowMono(),
		DurationMS: t.DurationMS,
		Direction:  t.Direction,
	}, memory.Public)
	return nil
}

func (t *TimerBehavior) RegisterHandlers(k runtime.ActionKernel, b *runtime.Block) {
	memory.Allocate(k.Memory(), "handler", b.Key, runtime.Handler{
		Event: runtime.EventTick,
		Fn:    t.onTick,
	}, memory.Public)
}

func (t *TimerBehavior) onTick(k runtime.ActionKernel, ev runtime.Event) []Action {
	state, ok := memory.Get(k.Memory(), t.Ref)
	if !ok || state.Paused || t.Direction == fragment.DirectionUp {
		return nil
	}
	elapsed := k.Clock().ElapsedMS(state.StartMono)
	if elapsed < t.DurationMS {
		return nil
	}
	return []Action{runtime.EmitEventAction{Event: runtime.Event{Name: "timer:expired"}}}
}

// Elapsed returns the number of milliseconds since the timer started, as
// observed by the current (possibly frozen) clock.
func (t *TimerBehavior) Elapsed(k runtime.ActionKernel) uint64 {
	state, ok := memory.Get(k.Memory(), t.Ref)
	if !ok {
		return 0
	}
	return k.Clock().ElapsedMS(state.StartMono)
}

// Remaining returns the milliseconds left on a count-down timer, or 0 if
// expired or count-up.
func (t *TimerBehavior) Remaining(k runtime.ActionKernel) uint64 {
	if t.Direction == fragment.DirectionUp {
		return 0
	}
	elapsed := t.Elapsed(k)
	if elapsed >= t.DurationMS {
		return 0
	}
	return t.DurationMS - elapsed
}

// Reset restarts the timer's clock from now, used by TimerEndingBehavior's
// ResetInterval completion mode (e.g. EMOM rolling to the next minute).
func (t *TimerBehavior) Reset(k runtime.ActionKernel) {
	state, ok := memory.Get(k.Memory(), t.Ref)
	if !ok {
		return
	}
	state.StartMono = k.Clock().NowMono()
	memory.Set(k.Memory(), t.Ref, state)
}
