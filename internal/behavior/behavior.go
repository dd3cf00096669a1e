// Package behavior implements the nine composable aspects a compiled
// Block is built from: timer, re-entry, child selection, fragment
// promotion, timer-ending, rounds-end, labeling, report-output, and
// completion-timestamp. Constructors take only an aspect's configuration,
// never the memory store or clock; an aspect allocates its memory cells in
// OnMount and registers its event handlers in RegisterHandlers, both
// called by the kernel when the block is pushed. Construction itself
// allocates nothing.
package behavior

import (
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// Behavior is the contract every aspect satisfies; it is identical to
// runtime.BehaviorHandle, restated here as the package's public name for
// it since this is where implementations live.
type Behavior = runtime.BehaviorHandle

// BaseBehavior supplies no-op defaults for every hook so a concrete aspect
// only needs to override what it actually uses.
type BaseBehavior struct{}

func (BaseBehavior) OnMount(k runtime.ActionKernel, b *runtime.Block) []Action       { return nil }
func (BaseBehavior) OnNext(k runtime.ActionKernel, b *runtime.Block) []Action        { return nil }
func (BaseBehavior) OnUnmount(k runtime.ActionKernel, b *runtime.Block) []Action     { return nil }
func (BaseBehavior) RegisterHandlers(k runtime.ActionKernel, b *runtime.Block)       {}
func (BaseBehavior) Dispose(k runtime.ActionKernel, b *runtime.Block)                {}

// Action is the alias used throughout this package for the kernel's action
// type, kept short since every hook signature mentions it.
type Action = runtime.Action
