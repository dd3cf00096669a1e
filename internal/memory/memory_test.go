package memory

import (
	"testing"

	"github.com/antigravity-dev/wodcore/internal/clockid"
)

func TestAllocateGetSet(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	ref := Allocate(s, "round", owner, 1, Public)

	v, ok := Get(s, ref)
	if !ok || v != 1 {
		t.Fatalf("Get = %v, %v, want 1, true", v, ok)
	}

	Set(s, ref, 2)
	v, ok = Get(s, ref)
	if !ok || v != 2 {
		t.Fatalf("Get after Set = %v, %v, want 2, true", v, ok)
	}
}

func TestRelease_Idempotent(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	ref := Allocate(s, "round", owner, 1, Public)

	ReleaseTyped(s, ref)
	if _, ok := Get(s, ref); ok {
		t.Fatal("Get after release should return ok=false")
	}
	// idempotent: must not panic
	ReleaseTyped(s, ref)
	Release(s, ref.Ref())
}

func TestSet_AfterRelease_IsNoOp(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	ref := Allocate(s, "round", owner, 1, Public)
	ReleaseTyped(s, ref)

	Set(s, ref, 99) // must not panic, must not resurrect the cell
	if _, ok := Get(s, ref); ok {
		t.Fatal("Set after release must not resurrect the cell")
	}
}

func TestSubscribe_FiresOnlyOnActualChange(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	ref := Allocate(s, "round", owner, 1, Public)

	var calls int
	Subscribe(s, ref, func(old, new int) { calls++ })

	Set(s, ref, 1) // unchanged
	if calls != 0 {
		t.Fatalf("calls after no-op Set = %d, want 0", calls)
	}
	Set(s, ref, 2) // changed
	if calls != 1 {
		t.Fatalf("calls after real Set = %d, want 1", calls)
	}
}

func TestSubscribe_RegistrationOrder(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	ref := Allocate(s, "round", owner, 1, Public)

	var order []int
	Subscribe(s, ref, func(old, new int) { order = append(order, 1) })
	Subscribe(s, ref, func(old, new int) { order = append(order, 2) })
	Subscribe(s, ref, func(old, new int) { order = append(order, 3) })

	Set(s, ref, 2)
	want := []int{1, 2, 3}
	if len(order) != 3 {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSearch_PrivateOnlyMatchesOwner(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	other := clockid.NewBlockKey()
	ref := Allocate(s, "handler", owner, "h", Private)

	hits := s.Search(Criteria{TypeTag: "handler", Searcher: owner})
	if len(hits) != 1 || hits[0] != ref.Ref() {
		t.Fatalf("owner search = %v, want [%v]", hits, ref.Ref())
	}

	hits = s.Search(Criteria{TypeTag: "handler", Searcher: other})
	if len(hits) != 0 {
		t.Fatalf("non-owner search = %v, want []", hits)
	}
}

func TestSearch_PublicVisibleToAnySearcher(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	other := clockid.NewBlockKey()
	ref := Allocate(s, "timer", owner, 100, Public)

	hits := s.Search(Criteria{TypeTag: "timer", Searcher: other})
	if len(hits) != 1 || hits[0] != ref.Ref() {
		t.Fatalf("public search from non-owner = %v, want [%v]", hits, ref.Ref())
	}
}

func TestSearch_WildcardCriteria(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	Allocate(s, "timer", owner, 1, Public)
	Allocate(s, "round", owner, 1, Public)

	hits := s.Search(Criteria{Searcher: owner})
	if len(hits) != 2 {
		t.Fatalf("wildcard search = %d hits, want 2", len(hits))
	}
}

func TestReleaseOwnedBy_ReleasesAllOfOnesCells(t *testing.T) {
	s := NewStore()
	owner := clockid.NewBlockKey()
	other := clockid.NewBlockKey()
	a := Allocate(s, "timer", owner, 1, Public)
	b := Allocate(s, "round", owner, 1, Public)
	c := Allocate(s, "timer", other, 1, Public)

	s.ReleaseOwnedBy(owner)

	if _, ok := Get(s, a); ok {
		t.Error("owner's cell a should be released")
	}
	if _, ok := Get(s, b); ok {
		t.Error("owner's cell b should be released")
	}
	if _, ok := Get(s, c); !ok {
		t.Error("other block's cell should remain")
	}
}

func TestSet_StructuredValuesUseDeepEquality(t *testing.T) {
	type span struct{ Start, End int }
	s := NewStore()
	owner := clockid.NewBlockKey()
	ref := Allocate(s, "span", owner, span{1, 2}, Public)

	var calls int
	Subscribe(s, ref, func(old, new span) { calls++ })

	Set(s, ref, span{1, 2}) // equal by value
	if calls != 0 {
		t.Fatalf("calls = %d, want 0 for an equal struct", calls)
	}
	Set(s, ref, span{1, 3})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 for a changed struct", calls)
	}
}
