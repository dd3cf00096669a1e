// Package memory implements the typed, owner-scoped, searchable, subscribable
// reference-cell store used by every behavior and the runtime kernel for
// inter-component communication. No two components may talk directly; they
// talk through named cells in a Store.
package memory

import (
	"reflect"
	"sync/atomic"

	"github.com/antigravity-dev/wodcore/internal/clockid"
)

// Visibility controls who may discover a cell via Search.
type Visibility int

const (
	// Private cells are only matched by Search when Criteria.Searcher is the
	// cell's owner.
	Private Visibility = iota
	// Public cells are visible to any searcher regardless of OwnerID.
	Public
)

// Ref is an opaque handle to a memory cell, returned by Allocate.
type Ref uint64

var refSeq atomic.Uint64

// Store holds all memory cells for a runtime. It is not safe for concurrent
// use from multiple goroutines; the runtime kernel only ever touches it
// within a single frozen turn.
type Store struct {
	cells map[Ref]*cell
}

type cell struct {
	id        Ref
	typeTag   string
	ownerID   clockid.BlockKey
	vis       Visibility
	value     any
	opaque    bool
	listeners []func(old, new any)
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{cells: make(map[Ref]*cell)}
}

// TypedRef is a type-safe view over a Ref, returned by Allocate.
type TypedRef[T any] struct {
	ref Ref
}

// Ref returns the untyped handle backing this TypedRef.
func (t TypedRef[T]) Ref() Ref { return t.ref }

// Allocate creates a new cell of the given type tag, owned by ownerID, with
// the given initial value and visibility.
func Allocate[T any](s *Store, typeTag string, ownerID clockid.BlockKey, initial T, vis Visibility) TypedRef[T] {
	id := Ref(refSeq.Add(1))
	s.cells[id] = &cell{
		id:      id,
		typeTag: typeTag,
		ownerID: ownerID,
		vis:     vis,
		value:   initial,
		opaque:  isOpaque(initial),
	}
	return TypedRef[T]{ref: id}
}

// Get returns the current value of ref, or the zero value and false if the
// cell has been released.
func Get[T any](s *Store, ref TypedRef[T]) (T, bool) {
	var zero T
	c, ok := s.cells[ref.ref]
	if !ok {
		return zero, false
	}
	v, ok := c.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set updates ref's value. Subscribers are notified synchronously, in
// registration order, and only if the value actually changed: deep equality
// for structured values, reference identity for opaque (pointer/func/chan)
// values. Set on a released ref is a documented no-op.
func Set[T any](s *Store, ref TypedRef[T], value T) {
	c, ok := s.cells[ref.ref]
	if !ok {
		return
	}
	old := c.value
	if !changed(old, value, c.opaque) {
		c.value = value
		return
	}
	c.value = value
	for _, listener := range c.listeners {
		listener(old, value)
	}
}

// SubscriptionHandle cancels a subscription when Unsubscribe is called.
type SubscriptionHandle struct {
	ref   Ref
	store *Store
	index int
}

// Unsubscribe removes the callback from the cell's listener list. Safe to
// call more than once, and safe to call after the cell has been released.
func (h SubscriptionHandle) Unsubscribe() {
	c, ok := h.store.cells[h.ref]
	if !ok {
		return
	}
	if h.index < 0 || h.index >= len(c.listeners) {
		return
	}
	c.listeners[h.index] = func(old, new any) {}
}

// Subscribe registers callback to run synchronously whenever ref's value
// changes via Set.
func Subscribe[T any](s *Store, ref TypedRef[T], callback func(old, new T)) SubscriptionHandle {
	c, ok := s.cells[ref.ref]
	if !ok {
		return SubscriptionHandle{ref: ref.ref, store: s, index: -1}
	}
	idx := len(c.listeners)
	c.listeners = append(c.listeners, func(old, new any) {
		oldT, _ := old.(T)
		newT, _ := new.(T)
		callback(oldT, newT)
	})
	return SubscriptionHandle{ref: ref.ref, store: s, index: idx}
}

// Release removes a cell from the store. Idempotent: releasing an
// already-released (or never-allocated) ref is a safe no-op.
func Release(s *Store, ref Ref) {
	delete(s.cells, ref)
}

// ReleaseTyped is the typed convenience form of Release.
func ReleaseTyped[T any](s *Store, ref TypedRef[T]) {
	Release(s, ref.ref)
}

// Criteria selects cells in Search. A nil/zero-value field acts as a
// wildcard; TypeTag == "" matches any type tag, and so on. A nil OwnerID
// means "no owner constraint".
type Criteria struct {
	ID       *Ref
	OwnerID  *clockid.BlockKey
	TypeTag  string
	VisSet   bool
	Vis      Visibility
	// Searcher is the block performing the search; Private cells only match
	// when Searcher equals the cell's OwnerID.
	Searcher clockid.BlockKey
}

// Search returns every Ref matching criteria, honoring the Private/Public
// visibility rule: a Private cell only matches when criteria.Searcher
// equals the cell's owner.
func (s *Store) Search(criteria Criteria) []Ref {
	var out []Ref
	for id, c := range s.cells {
		if criteria.ID != nil && *criteria.ID != id {
			continue
		}
		if criteria.OwnerID != nil && *criteria.OwnerID != c.ownerID {
			continue
		}
		if criteria.TypeTag != "" && criteria.TypeTag != c.typeTag {
			continue
		}
		if criteria.VisSet && criteria.Vis != c.vis {
			continue
		}
		if c.vis == Private && c.ownerID != criteria.Searcher {
			continue
		}
		out = append(out, id)
	}
	return out
}

// TypeTagOf returns the type tag a cell was allocated with.
func (s *Store) TypeTagOf(ref Ref) (string, bool) {
	c, ok := s.cells[ref]
	if !ok {
		return "", false
	}
	return c.typeTag, true
}

// OwnerOf returns the block that owns a cell.
func (s *Store) OwnerOf(ref Ref) (clockid.BlockKey, bool) {
	c, ok := s.cells[ref]
	if !ok {
		return clockid.BlockKey{}, false
	}
	return c.ownerID, true
}

// RawValue returns a cell's value as `any`, for generic consumers (e.g. the
// dispatcher's handler lookup) that cannot know T statically.
func (s *Store) RawValue(ref Ref) (any, bool) {
	c, ok := s.cells[ref]
	if !ok {
		return nil, false
	}
	return c.value, true
}

// ReleaseOwnedBy releases every cell owned by owner. Used by block disposal.
func (s *Store) ReleaseOwnedBy(owner clockid.BlockKey) {
	for id, c := range s.cells {
		if c.ownerID == owner {
			delete(s.cells, id)
		}
	}
}

func isOpaque(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Ptr, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

func changed(old, new any, opaque bool) bool {
	if opaque {
		ov, nv := reflect.ValueOf(old), reflect.ValueOf(new)
		if ov.Kind() != nv.Kind() {
			return true
		}
		switch ov.Kind() {
		case reflect.Ptr, reflect.Chan, reflect.UnsafePointer:
			return ov.Pointer() != nv.Pointer()
		case reflect.Func:
			return ov.Pointer() != nv.Pointer()
		default:
			return true
		}
	}
	return !reflect.DeepEqual(old, new)
}
