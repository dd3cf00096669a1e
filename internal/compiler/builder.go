// Package compiler implements the JIT: an ordered registry of strategies,
// each first-match-wins, that turn one fragment.Statement into a composed
// runtime.Block via the BlockBuilder aspect API.
package compiler

import (
	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

// BlockBuilder composes a runtime.Block from an ordered list of behaviors.
// Order matters: a later behavior in the list sees an earlier one's
// on_mount effects already applied to the block's memory (e.g.
// FragmentPromotionBehavior's effective_reps cell exists by the time any
// later behavior's on_mount runs).
type BlockBuilder struct {
	blockType string
	sourceIDs []fragment.StatementID
	behaviors []runtime.BehaviorHandle
	fragments []fragment.Fragment
}

// NewBlockBuilder starts composing a block of the given type, grounded on
// sourceIDs (almost always a single statement ID).
func NewBlockBuilder(blockType string, sourceIDs []fragment.StatementID) *BlockBuilder {
	return &BlockBuilder{blockType: blockType, sourceIDs: sourceIDs}
}

// With appends behavior to the composition, in order.
func (b *BlockBuilder) With(behavior runtime.BehaviorHandle) *BlockBuilder {
	b.behaviors = append(b.behaviors, behavior)
	return b
}

// WithFragments attaches the source statement's display fragments to the
// built block, so a ReportOutputBehavior can carry them on its emitted
// OutputStatements.
func (b *BlockBuilder) WithFragments(frags []fragment.Fragment) *BlockBuilder {
	b.fragments = frags
	return b
}

// Build finalizes the block.
func (b *BlockBuilder) Build() *runtime.Block {
	block := runtime.NewBlock(b.blockType, b.sourceIDs, b.behaviors)
	block.Fragments = b.fragments
	return block
}
