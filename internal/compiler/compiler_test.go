package compiler

import (
	"testing"

	"github.com/antigravity-dev/wodcore/internal/fragment"
	"github.com/antigravity-dev/wodcore/internal/memory"
	"github.com/antigravity-dev/wodcore/internal/resolver"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

func leafEffortStatement(id fragment.StatementID, raw string, reps uint32, lb float64) *fragment.Statement {
	s := fragment.NewStatement(id)
	s.PushFragment(fragment.NewRepFragment(fragment.Meta{}, reps))
	s.PushFragment(fragment.NewEffortFragment(fragment.Meta{}, raw, nil))
	s.PushFragment(fragment.NewResistanceFragment(fragment.Meta{}, lb, fragment.ResistanceLB))
	return s.Finish()
}

func TestJitCompiler_LeafEffortStrategyMatchesPlainStatement(t *testing.T) {
	stmt := leafEffortStatement(1, "Thrusters", 21, 95)
	forest := fragment.NewForest()
	forest.Add(stmt)

	jc := NewJitCompiler(resolver.NewStatic(), nil)
	block, err := jc.Compile([]fragment.StatementID{1}, forest, memory.NewStore(), runtime.CompilationContext{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if block.BlockType != "leaf-effort" {
		t.Fatalf("expected leaf-effort block, got %q", block.BlockType)
	}
	if len(block.Behaviors) == 0 {
		t.Fatal("expected composed behaviors on leaf block")
	}
}

func TestJitCompiler_TimedActionStrategyMatchesTimerPlusAction(t *testing.T) {
	stmt := fragment.NewStatement(2)
	stmt.PushFragment(fragment.NewTimerFragment(fragment.Meta{}, 20*60*1000, "20:00"))
	stmt.PushFragment(fragment.NewActionFragment(fragment.Meta{}, "AMRAP"))
	stmt.Finish()

	forest := fragment.NewForest()
	forest.Add(stmt)

	jc := NewJitCompiler(resolver.NewStatic(), nil)
	block, err := jc.Compile([]fragment.StatementID{2}, forest, memory.NewStore(), runtime.CompilationContext{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if block.BlockType != "timed-action" {
		t.Fatalf("expected timed-action block, got %q", block.BlockType)
	}
}

func TestJitCompiler_RoundsContainerStrategyMatchesRoundsFragment(t *testing.T) {
	child := leafEffortStatement(11, "Pullups", 10, 0)
	child.SetParent(10)

	total := uint32(3)
	parent := fragment.NewStatement(10)
	parent.PushFragment(fragment.NewRoundsFragment(fragment.Meta{}, &total, nil))
	parent.AddChildGroup([]fragment.StatementID{11})
	parent.Finish()

	forest := fragment.NewForest()
	forest.Add(parent)
	forest.Add(child)

	jc := NewJitCompiler(resolver.NewStatic(), nil)
	block, err := jc.Compile([]fragment.StatementID{10}, forest, memory.NewStore(), runtime.CompilationContext{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if block.BlockType != "rounds" {
		t.Fatalf("expected rounds block, got %q", block.BlockType)
	}
}

func TestJitCompiler_DiagnosticLeafStrategyIsLastResort(t *testing.T) {
	stmt := fragment.NewStatement(99)
	stmt.PushFragment(fragment.NewTextFragment(fragment.Meta{}, "# a comment line"))
	stmt.Finish()

	forest := fragment.NewForest()
	forest.Add(stmt)

	jc := NewJitCompiler(resolver.NewStatic(), nil)
	block, err := jc.Compile([]fragment.StatementID{99}, forest, memory.NewStore(), runtime.CompilationContext{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if block.BlockType != "diagnostic-leaf" {
		t.Fatalf("expected diagnostic-leaf block, got %q", block.BlockType)
	}
}

func TestJitCompiler_UnknownStatementIDErrors(t *testing.T) {
	jc := NewJitCompiler(resolver.NewStatic(), nil)
	forest := fragment.NewForest()
	if _, err := jc.Compile([]fragment.StatementID{404}, forest, memory.NewStore(), runtime.CompilationContext{}); err == nil {
		t.Fatal("expected error for unknown statement id")
	}
}

func TestJitCompiler_MultipleIDsErrors(t *testing.T) {
	jc := NewJitCompiler(resolver.NewStatic(), nil)
	forest := fragment.NewForest()
	if _, err := jc.Compile([]fragment.StatementID{1, 2}, forest, memory.NewStore(), runtime.CompilationContext{}); err == nil {
		t.Fatal("expected error for multiple statement ids")
	}
}

// TestRuntime_EndToEndLeafEffortDrainsAndEmitsMetric drives the full
// compiler+runtime pipeline for a single measurable leaf statement, the
// way cmd/wodctl does for a one-line script.
func TestRuntime_EndToEndLeafEffortDrainsAndEmitsMetric(t *testing.T) {
	stmt := leafEffortStatement(1, "Thrusters", 21, 95)
	forest := fragment.NewForest()
	forest.Add(stmt)

	jc := NewJitCompiler(resolver.NewStatic(), nil)
	rt := runtime.New(runtime.Options{Compiler: jc})

	if err := rt.Load("thrusters", forest, []fragment.StatementID{1}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	rt.Start()
	if rt.Snapshot().Depth != 1 {
		t.Fatalf("expected depth 1 after start, got %d", rt.Snapshot().Depth)
	}

	rt.Step() // marks complete
	rt.Step() // pops

	if rt.Snapshot().Depth != 0 {
		t.Fatalf("expected depth 0 after draining leaf, got %d", rt.Snapshot().Depth)
	}
}
