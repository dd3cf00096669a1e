package fragment

import "testing"

func TestResistanceFragment_NormalizesToKG(t *testing.T) {
	cases := []struct {
		name string
		unit ResistanceUnit
		val  float64
		want float64
	}{
		{"pounds", ResistanceLB, 95, 95 * lbToKg},
		{"kilograms", ResistanceKG, 60, 60},
		{"bodyweight", ResistanceBW, 1, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewResistanceFragment(Meta{}, c.val, c.unit)
			if r.NormalizedKG != c.want {
				t.Errorf("NormalizedKG = %v, want %v", r.NormalizedKG, c.want)
			}
		})
	}
}

func TestResistanceFragment_PoundsApprox(t *testing.T) {
	r := NewResistanceFragment(Meta{}, 95, ResistanceLB)
	const want = 43.09
	diff := r.NormalizedKG - want
	if diff < 0 {
		diff = -diff
	}
	if diff > 0.01 {
		t.Errorf("95lb normalized = %.4f kg, want ~%.2f", r.NormalizedKG, want)
	}
}

func TestDistanceFragment_NormalizesToMeters(t *testing.T) {
	cases := []struct {
		name string
		unit DistanceUnit
		val  float64
		want float64
	}{
		{"meters", DistanceMeter, 400, 400},
		{"kilometers", DistanceKM, 5, 5000},
		{"feet", DistanceFeet, 10, 10 * ftToM},
		{"miles", DistanceMile, 1, mileToM},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := NewDistanceFragment(Meta{}, c.val, c.unit)
			if d.NormalizedM != c.want {
				t.Errorf("NormalizedM = %v, want %v", d.NormalizedM, c.want)
			}
		})
	}
}

func TestWithTimestamp_SetsOnConcreteType(t *testing.T) {
	f := NewRepFragment(Meta{Line: 1}, 21)
	stamped := WithTimestamp(f, 12345)
	if stamped.Timestamp() != 12345 {
		t.Errorf("Timestamp() = %d, want 12345", stamped.Timestamp())
	}
	if f.Timestamp() != 0 {
		t.Error("original fragment must remain unmodified (value semantics)")
	}
}

func TestStatement_BuilderAndFinish(t *testing.T) {
	s := NewStatement(1)
	s.PushFragment(NewRepFragment(Meta{}, 21))
	s.AddChildGroup([]StatementID{2, 3})
	s.SetMeta(Meta{Line: 4})
	s.Finish()

	if len(s.Fragments()) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(s.Fragments()))
	}
	if len(s.Children()) != 1 || len(s.Children()[0]) != 2 {
		t.Fatalf("unexpected children: %+v", s.Children())
	}
	if s.Meta().Line != 4 {
		t.Fatalf("Meta().Line = %d, want 4", s.Meta().Line)
	}
}

func TestStatement_PanicsAfterFinish(t *testing.T) {
	s := NewStatement(1).Finish()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic mutating a finished statement")
		}
	}()
	s.PushFragment(NewRepFragment(Meta{}, 1))
}

func TestFragmentOfType(t *testing.T) {
	s := NewStatement(1)
	s.PushFragment(NewEffortFragment(Meta{}, "Thrusters", nil))
	s.PushFragment(NewRepFragment(Meta{}, 21))
	s.Finish()

	rep, ok := FragmentOfType[RepFragment](s)
	if !ok || rep.Count != 21 {
		t.Fatalf("FragmentOfType[RepFragment] = %+v, ok=%v", rep, ok)
	}
	if HasFragmentType[TimerFragment](s) {
		t.Fatal("statement should not have a TimerFragment")
	}
}

func TestForest_RootsAndLookup(t *testing.T) {
	f := NewForest()
	root := NewStatement(1).Finish()
	f.Add(root)

	child := NewStatement(2)
	child.SetParent(1)
	child.Finish()
	f.Add(child)

	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	roots := f.Roots()
	if len(roots) != 1 || roots[0] != 1 {
		t.Fatalf("Roots() = %v, want [1]", roots)
	}
	if f.Get(2).Parent() == nil || *f.Get(2).Parent() != 1 {
		t.Fatal("child statement should report parent id 1")
	}
}
