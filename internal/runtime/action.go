package runtime

import (
	"github.com/antigravity-dev/wodcore/internal/clockid"
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/metrics"
)

// Action is a deterministic command produced by a behavior hook or by the
// dispatcher itself. Do executes the command against the kernel and returns
// any follow-up actions, which run before whatever else was already queued.
type Action interface {
	Do(k ActionKernel) []Action
}

// Event is a named occurrence searched for matching handler cells.
// Round-changed, timer-reset, pause and resume are the built-in names;
// behaviors may mint their own.
type Event struct {
	Name    string
	Payload any
}

const (
	EventNext         = "next"
	EventTick         = "tick"
	EventRoundChanged = "round:changed"
	EventTimerReset   = "timer:reset"
	EventPause        = "pause"
	EventResume       = "resume"
)

// Handler pairs an event name with the function to run when it fires. A
// behavior registers one by allocating a memory cell with type tag
// "handler" holding a Handler value.
type Handler struct {
	Event string
	Fn    func(k ActionKernel, ev Event) []Action
}

// ActionKernel is everything an Action.Do or a Handler.Fn needs to touch.
// internal/behavior and internal/compiler consume this interface; only
// Runtime (in kernel.go) implements it.
type ActionKernel interface {
	Stack() *Stack
	Memory() *memory.Store
	Clock() clockid.Clock
	Compiler() Compiler
	Output() *OutputSink
	Metrics() MetricSink
	Dispatch(event Event) []Action
}

// PushBlockAction mounts a freshly compiled block on top of the stack and
// runs its on_mount hooks.
type PushBlockAction struct {
	Block *Block
}

func (a PushBlockAction) Do(k ActionKernel) []Action {
	if err := k.Stack().Push(a.Block); err != nil {
		return []Action{ErrorAction{Err: err}}
	}
	a.Block.transition(StatePushed)
	a.Block.transition(StateMounted)

	var actions []Action
	for _, b := range a.Block.Behaviors {
		b.RegisterHandlers(k, a.Block)
	}
	for _, b := range a.Block.Behaviors {
		actions = append(actions, b.OnMount(k, a.Block)...)
	}
	a.Block.transition(StateRunning)
	return actions
}

// PopBlockAction unmounts and disposes the current top block.
type PopBlockAction struct{}

func (a PopBlockAction) Do(k ActionKernel) []Action {
	top := k.Stack().Top()
	if top == nil {
		return nil
	}
	var actions []Action
	for _, b := range top.Behaviors {
		actions = append(actions, b.OnUnmount(k, top)...)
	}
	if _, err := k.Stack().Pop(); err != nil {
		return append(actions, ErrorAction{Err: err})
	}
	top.transition(StatePopped)
	for _, b := range top.Behaviors {
		b.Dispose(k, top)
	}
	k.Memory().ReleaseOwnedBy(top.Key)
	top.transition(StateDisposed)
	return actions
}

// NextAction asks the current block to advance (the "next" request), via
// each behavior's OnNext hook in composition order.
type NextAction struct{}

func (a NextAction) Do(k ActionKernel) []Action {
	top := k.Stack().Top()
	if top == nil {
		return nil
	}
	if top.State() == StateComplete {
		// A finished block never receives on_next again: pop it and let
		// its parent (now on top) decide what happens next.
		return []Action{PopBlockAction{}, NextAction{}}
	}
	top.transition(StateNextCalled)
	var actions []Action
	for _, b := range top.Behaviors {
		actions = append(actions, b.OnNext(k, top)...)
	}
	if top.State() != StateComplete {
		top.transition(StateRunning)
	}
	return actions
}

// MarkCompleteAction transitions the current block to Complete without
// popping it; a subsequent PopBlockAction (usually the next turn) tears it
// down.
type MarkCompleteAction struct{}

func (a MarkCompleteAction) Do(k ActionKernel) []Action {
	if top := k.Stack().Top(); top != nil {
		top.transition(StateComplete)
	}
	return nil
}

// MetricSink is the interface internal/metrics.Store satisfies.
type MetricSink interface {
	Record(e metrics.Entry)
}

// EmitMetricAction appends a measurement to the metric store.
type EmitMetricAction struct {
	Sink   MetricSink
	Metric metrics.Entry
}

func (a EmitMetricAction) Do(k ActionKernel) []Action {
	if a.Sink != nil {
		a.Sink.Record(a.Metric)
	}
	return nil
}

// EmitSystemOutputAction emits a System output statement, used both for
// diagnostic narration (event -> N actions) and handler-panic isolation.
type EmitSystemOutputAction struct {
	Message string
}

func (a EmitSystemOutputAction) Do(k ActionKernel) []Action {
	k.Output().Emit(OutputStatement{
		Type:    OutputSystem,
		Message: a.Message,
	})
	return nil
}

// UpdateMemoryAction runs an arbitrary mutation against the store. Behaviors
// use this to batch several Set calls as one action rather than mutating the
// store directly from outside Do.
type UpdateMemoryAction struct {
	Apply func(*memory.Store)
}

func (a UpdateMemoryAction) Do(k ActionKernel) []Action {
	if a.Apply != nil {
		a.Apply(k.Memory())
	}
	return nil
}

// ErrorAction records a runtime error as a System output and halts nothing
// else; the turn continues to quiescence.
type ErrorAction struct {
	Err error
}

func (a ErrorAction) Do(k ActionKernel) []Action {
	if a.Err == nil {
		return nil
	}
	k.Output().Emit(OutputStatement{
		Type:    OutputSystem,
		Message: "error: " + a.Err.Error(),
	})
	return nil
}

// EmitEventAction re-enters the dispatcher for a synthetic event raised by a
// behavior mid-turn (e.g. round:changed), sharing the same frozen clock.
type EmitEventAction struct {
	Event Event
}

func (a EmitEventAction) Do(k ActionKernel) []Action {
	return k.Dispatch(a.Event)
}
