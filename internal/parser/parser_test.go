package parser

import (
	"testing"

	"github.com/antigravity-dev/wodcore/internal/fragment"
)

func TestParse_AMRAPWithRepScheme(t *testing.T) {
	src := "20:00 [:AMRAP]\n  (21-15-9)\n    Thrusters 95lb\n    Pullups"
	result := Parse(src)
	if len(result.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
	}

	roots := result.Forest.Roots()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	root := result.Forest.Get(roots[0])
	if !fragment.HasFragmentType[fragment.TimerFragment](root) {
		t.Error("root statement should carry a TimerFragment")
	}
	if !fragment.HasFragmentType[fragment.ActionFragment](root) {
		t.Error("root statement should carry an ActionFragment")
	}
	action, _ := fragment.FragmentOfType[fragment.ActionFragment](root)
	if action.Name != "AMRAP" {
		t.Errorf("action name = %q, want AMRAP", action.Name)
	}

	if len(root.Children()) != 1 || len(root.Children()[0]) != 1 {
		t.Fatalf("root should have exactly one child group with one statement: %+v", root.Children())
	}
	roundsID := root.Children()[0][0]
	rounds := result.Forest.Get(roundsID)
	rf, ok := fragment.FragmentOfType[fragment.RoundsFragment](rounds)
	if !ok {
		t.Fatal("expected a RoundsFragment on the rounds statement")
	}
	if rf.RepScheme == nil {
		t.Fatal("expected a rep scheme")
	}
	if got := rf.RepScheme.Counts; len(got) != 3 || got[0] != 21 || got[1] != 15 || got[2] != 9 {
		t.Errorf("rep scheme = %v, want [21 15 9]", got)
	}

	if len(rounds.Children()) != 1 || len(rounds.Children()[0]) != 2 {
		t.Fatalf("rounds statement should have one child group of 2: %+v", rounds.Children())
	}
	thrusters := result.Forest.Get(rounds.Children()[0][0])
	effort, _ := fragment.FragmentOfType[fragment.EffortFragment](thrusters)
	if effort.Raw != "Thrusters" {
		t.Errorf("effort raw = %q, want Thrusters", effort.Raw)
	}
	resistance, ok := fragment.FragmentOfType[fragment.ResistanceFragment](thrusters)
	if !ok || resistance.Unit != fragment.ResistanceLB || resistance.Value != 95 {
		t.Errorf("resistance = %+v, ok=%v", resistance, ok)
	}
}

func TestParse_EMOM(t *testing.T) {
	src := "[:EMOM] 10:00\n  3 Clean & Jerk 135lb"
	result := Parse(src)
	root := result.Forest.Get(result.Forest.Roots()[0])
	action, _ := fragment.FragmentOfType[fragment.ActionFragment](root)
	if action.Name != "EMOM" {
		t.Errorf("action = %q, want EMOM", action.Name)
	}
	child := result.Forest.Get(root.Children()[0][0])
	rep, ok := fragment.FragmentOfType[fragment.RepFragment](child)
	if !ok || rep.Count != 3 {
		t.Errorf("rep = %+v, ok=%v", rep, ok)
	}
	effort, _ := fragment.FragmentOfType[fragment.EffortFragment](child)
	if effort.Raw != "Clean & Jerk" {
		t.Errorf("effort raw = %q, want 'Clean & Jerk'", effort.Raw)
	}
}

func TestParse_RoundsForTime(t *testing.T) {
	src := "(3 rounds)\n  Run 400m\n  15 Pushups"
	result := Parse(src)
	root := result.Forest.Get(result.Forest.Roots()[0])
	rf, _ := fragment.FragmentOfType[fragment.RoundsFragment](root)
	if rf.Total == nil || *rf.Total != 3 {
		t.Fatalf("rounds total = %v, want 3", rf.Total)
	}
	if len(root.Children()[0]) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children()[0]))
	}
	run := result.Forest.Get(root.Children()[0][0])
	dist, ok := fragment.FragmentOfType[fragment.DistanceFragment](run)
	if !ok || dist.NormalizedM != 400 {
		t.Errorf("distance = %+v, ok=%v", dist, ok)
	}
}

func TestParse_PlankHold(t *testing.T) {
	result := Parse(":45 Plank Hold")
	root := result.Forest.Get(result.Forest.Roots()[0])
	timer, ok := fragment.FragmentOfType[fragment.TimerFragment](root)
	if !ok || timer.Milliseconds != 45000 {
		t.Errorf("timer = %+v, ok=%v", timer, ok)
	}
	effort, _ := fragment.FragmentOfType[fragment.EffortFragment](root)
	if effort.Raw != "Plank Hold" {
		t.Errorf("effort = %q, want 'Plank Hold'", effort.Raw)
	}
}

func TestParse_RestInjection(t *testing.T) {
	src := "(5 rounds)\n  7 Deadlift 225lb\n  Run 200m\n  [:Rest] 2:00"
	result := Parse(src)
	root := result.Forest.Get(result.Forest.Roots()[0])
	if len(root.Children()[0]) != 3 {
		t.Fatalf("expected 3 children, got %d", len(root.Children()[0]))
	}
	rest := result.Forest.Get(root.Children()[0][2])
	action, _ := fragment.FragmentOfType[fragment.ActionFragment](rest)
	if action.Name != "Rest" {
		t.Errorf("action = %q, want Rest", action.Name)
	}
	timer, ok := fragment.FragmentOfType[fragment.TimerFragment](rest)
	if !ok || timer.Milliseconds != 120000 {
		t.Errorf("rest timer = %+v, ok=%v", timer, ok)
	}
}

func TestParse_LeafEffort(t *testing.T) {
	result := Parse("21 Thrusters 95lb")
	if len(result.Forest.Roots()) != 1 {
		t.Fatalf("expected 1 root")
	}
	root := result.Forest.Get(result.Forest.Roots()[0])
	if root.HasChildren() {
		t.Error("leaf effort should have no children")
	}
	rep, _ := fragment.FragmentOfType[fragment.RepFragment](root)
	if rep.Count != 21 {
		t.Errorf("rep = %d, want 21", rep.Count)
	}
}

func TestParse_NestedRounds(t *testing.T) {
	src := "(3)\n  (21-15-9)\n    Thrusters\n    Pullups"
	result := Parse(src)
	outer := result.Forest.Get(result.Forest.Roots()[0])
	outerRounds, _ := fragment.FragmentOfType[fragment.RoundsFragment](outer)
	if outerRounds.Total == nil || *outerRounds.Total != 3 {
		t.Fatalf("outer total = %v, want 3", outerRounds.Total)
	}
	inner := result.Forest.Get(outer.Children()[0][0])
	innerRounds, _ := fragment.FragmentOfType[fragment.RoundsFragment](inner)
	if innerRounds.RepScheme == nil || len(innerRounds.RepScheme.Counts) != 3 {
		t.Fatalf("inner rep scheme = %+v", innerRounds.RepScheme)
	}
	if len(inner.Children()[0]) != 2 {
		t.Fatalf("expected 2 grandchildren, got %d", len(inner.Children()[0]))
	}
}

func TestParse_UnknownGlyphDoesNotAbort(t *testing.T) {
	result := Parse("21 Thrusters #95lb\n15 Pullups")
	if len(result.Forest.Roots()) != 2 {
		t.Fatalf("expected parsing to continue past the bad glyph, got %d roots", len(result.Forest.Roots()))
	}
	if len(result.Diagnostics) == 0 {
		t.Error("expected at least one diagnostic for the unrecognized glyph")
	}
}

func TestParse_UnterminatedGroupDoesNotAbort(t *testing.T) {
	result := Parse("(3 rounds\n  Run 400m")
	if len(result.Diagnostics) == 0 {
		t.Error("expected a diagnostic for the unterminated group")
	}
}

func TestParse_StatementIDsAreMonotonicAndUnique(t *testing.T) {
	result := Parse("(3 rounds)\n  Run 400m\n  15 Pushups")
	seen := map[fragment.StatementID]bool{}
	var last fragment.StatementID
	for id := fragment.StatementID(1); int(id) <= result.Forest.Len(); id++ {
		if result.Forest.Get(id) == nil {
			t.Fatalf("expected statement id %d to exist", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
		if id <= last {
			t.Fatalf("ids not monotonic: %d after %d", id, last)
		}
		last = id
	}
}
