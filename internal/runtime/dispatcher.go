package runtime

import (
	"fmt"

	"github.com/antigravity-dev/wodcore/internal/memory"
)

// dispatch locates every handler cell registered for event.Name, invokes
// each in registration order with its own panic recovery, and collects the
// actions they return. If any handler produced at least one action, a
// synthetic system-output action describing "event -> N action(s)" is
// prepended, matching the narration invariant.
func dispatch(k ActionKernel, store *memory.Store, searcher func() []memory.Ref, event Event) []Action {
	refs := searcher()
	var actions []Action
	for _, ref := range refs {
		raw, ok := store.RawValue(ref)
		if !ok {
			continue
		}
		h, ok := raw.(Handler)
		if !ok || h.Event != event.Name {
			continue
		}
		actions = append(actions, safeInvokeHandler(k, h, event)...)
	}
	if len(actions) > 0 {
		msg := fmt.Sprintf("%s -> %d action(s)", event.Name, len(actions))
		actions = append([]Action{EmitSystemOutputAction{Message: msg}}, actions...)
	}
	return actions
}

// safeInvokeHandler isolates a panicking handler: its own actions are
// discarded, a System output records the failure, and the caller's loop
// continues with the next handler.
func safeInvokeHandler(k ActionKernel, h Handler, event Event) (actions []Action) {
	defer func() {
		if r := recover(); r != nil {
			actions = []Action{EmitSystemOutputAction{
				Message: fmt.Sprintf("handler for %q panicked: %v", event.Name, r),
			}}
		}
	}()
	return h.Fn(k, event)
}

// runToQuiescence drains a LIFO of pending actions: the first element of
// any returned slice runs next, ahead of whatever else was already queued,
// giving depth-first, deterministic ordering. maxActions bounds a single
// turn (0 means unbounded) as a circuit breaker against a runaway handler
// loop; the turn halts with a System output rather than hang forever.
func runToQuiescence(k ActionKernel, initial []Action, maxActions int) {
	lifo := initial
	executed := 0
	for len(lifo) > 0 {
		if maxActions > 0 && executed >= maxActions {
			k.Output().Emit(OutputStatement{
				Type:    OutputSystem,
				Message: "turn aborted: max actions per turn exceeded",
			})
			return
		}
		next := lifo[0]
		rest := lifo[1:]
		produced := safeDo(k, next)
		executed++
		if len(produced) == 0 {
			lifo = rest
			continue
		}
		merged := make([]Action, 0, len(produced)+len(rest))
		merged = append(merged, produced...)
		merged = append(merged, rest...)
		lifo = merged
	}
}

// safeDo runs a single action with the same panic isolation as handlers:
// an action that panics is recorded as a System output and otherwise has no
// effect on the rest of the turn.
func safeDo(k ActionKernel, a Action) (produced []Action) {
	defer func() {
		if r := recover(); r != nil {
			produced = []Action{EmitSystemOutputAction{
				Message: fmt.Sprintf("action panicked: %v", r),
			}}
		}
	}()
	return a.Do(k)
}
