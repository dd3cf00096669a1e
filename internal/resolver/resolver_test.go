package resolver

import "testing"

func TestStatic_ResolvesKnownAlias(t *testing.T) {
	r := NewStatic()
	if got := r.Resolve("C&J"); got != "clean-and-jerk" {
		t.Errorf("Resolve(C&J) = %q, want clean-and-jerk", got)
	}
}

func TestStatic_FallsBackToNormalizedRaw(t *testing.T) {
	r := NewStatic()
	if got := r.Resolve("  Thrusters  "); got != "thrusters" {
		t.Errorf("Resolve = %q, want thrusters", got)
	}
	if got := r.Resolve("Clean & Jerk"); got != "clean-and-jerk" {
		t.Errorf("Resolve = %q, want clean-and-jerk", got)
	}
}

func TestStatic_MultiWordFallbackHyphenates(t *testing.T) {
	r := NewStatic()
	if got := r.Resolve("Sumo Deadlift High Pull"); got != "sumo-deadlift-high-pull" {
		t.Errorf("Resolve = %q, want sumo-deadlift-high-pull", got)
	}
}
