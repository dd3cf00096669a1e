package fragment

import "fmt"

// StatementID uniquely identifies a Statement within a parsed script.
// Monotonic from 1.
type StatementID uint32

// Statement is a parsed line of the workout DSL: a sequence of Fragments
// plus an ordered list of child groups (each an ordered list of child
// StatementIDs). Multiple groups model rep-scheme lanes and side-by-side
// blocks within one indented region.
type Statement struct {
	id        StatementID
	fragments []Fragment
	children  [][]StatementID
	parent    *StatementID
	meta      Meta

	finished bool
}

// NewStatement begins building a Statement with the given id.
func NewStatement(id StatementID) *Statement {
	return &Statement{id: id}
}

// ID returns the statement's unique id.
func (s *Statement) ID() StatementID { return s.id }

// PushFragment appends f to the statement's fragment list. Panics if the
// statement has already been finished.
func (s *Statement) PushFragment(f Fragment) *Statement {
	s.mustBeOpen()
	s.fragments = append(s.fragments, f)
	return s
}

// AddChildGroup appends a new ordered child group. Panics if the statement
// has already been finished.
func (s *Statement) AddChildGroup(ids []StatementID) *Statement {
	s.mustBeOpen()
	group := make([]StatementID, len(ids))
	copy(group, ids)
	s.children = append(s.children, group)
	return s
}

// SetParent records the statement's parent id. Panics if the statement has
// already been finished.
func (s *Statement) SetParent(id StatementID) *Statement {
	s.mustBeOpen()
	s.parent = &id
	return s
}

// SetMeta records the statement's source position. Panics if the statement
// has already been finished.
func (s *Statement) SetMeta(m Meta) *Statement {
	s.mustBeOpen()
	s.meta = m
	return s
}

// Finish freezes the statement; all further mutation methods panic.
func (s *Statement) Finish() *Statement {
	s.finished = true
	return s
}

func (s *Statement) mustBeOpen() {
	if s.finished {
		panic(fmt.Sprintf("fragment: statement %d is immutable after Finish()", s.id))
	}
}

// Fragments returns the statement's fragment list. The returned slice must
// not be mutated by the caller.
func (s *Statement) Fragments() []Fragment { return s.fragments }

// Children returns the statement's ordered child groups. The returned slice
// must not be mutated by the caller.
func (s *Statement) Children() [][]StatementID { return s.children }

// Parent returns the statement's parent id, or nil for a root statement.
func (s *Statement) Parent() *StatementID { return s.parent }

// Meta returns the statement's source position.
func (s *Statement) Meta() Meta { return s.meta }

// HasChildren reports whether the statement has at least one non-empty
// child group.
func (s *Statement) HasChildren() bool {
	for _, group := range s.children {
		if len(group) > 0 {
			return true
		}
	}
	return false
}

// FragmentOfType returns the first fragment assignable to the example type
// T and true, or the zero value and false if none is present.
func FragmentOfType[T Fragment](s *Statement) (T, bool) {
	var zero T
	for _, f := range s.fragments {
		if v, ok := f.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// HasFragmentType reports whether the statement carries at least one
// fragment assignable to T.
func HasFragmentType[T Fragment](s *Statement) bool {
	_, ok := FragmentOfType[T](s)
	return ok
}

// Forest is a parsed collection of Statements indexed by id, forming a
// forest of trees (no cycles).
type Forest struct {
	byID map[StatementID]*Statement
	root []StatementID
}

// NewForest constructs an empty Forest.
func NewForest() *Forest {
	return &Forest{byID: make(map[StatementID]*Statement)}
}

// Add registers a finished statement in the forest. If it has no parent it
// is also recorded as a root.
func (f *Forest) Add(s *Statement) {
	f.byID[s.id] = s
	if s.parent == nil {
		f.root = append(f.root, s.id)
	}
}

// Get returns the statement with the given id, or nil if absent.
func (f *Forest) Get(id StatementID) *Statement { return f.byID[id] }

// Roots returns the top-level statement ids in parse order.
func (f *Forest) Roots() []StatementID {
	out := make([]StatementID, len(f.root))
	copy(out, f.root)
	return out
}

// Len returns the number of statements in the forest.
func (f *Forest) Len() int { return len(f.byID) }
