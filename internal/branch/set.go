package branch

// Set is an insertion-ordered set of branches.
type Set struct {
	order []Branch
	index map[Branch]bool
}

// NewSet creates a set holding the given branches.
func NewSet(branches ...Branch) *Set {
	s := &Set{index: make(map[Branch]bool)}
	s.Add(branches...)
	return s
}

// Add inserts branches not yet present.
func (s *Set) Add(branches ...Branch) {
	for _, b := range branches {
		if s.index[b] {
			continue
		}
		s.index[b] = true
		s.order = append(s.order, b)
	}
}

// Retain keeps only the branches also present in other.
func (s *Set) Retain(other []Branch) {
	keep := make(map[Branch]bool, len(other))
	for _, b := range other {
		keep[b] = true
	}

	kept := s.order[:0]
	for _, b := range s.order {
		if keep[b] {
			kept = append(kept, b)
			continue
		}
		delete(s.index, b)
	}
	s.order = kept
}

// Contains reports whether b is in the set.
func (s *Set) Contains(b Branch) bool {
	return s.index[b]
}

// Len returns the number of branches.
func (s *Set) Len() int {
	return len(s.order)
}

// IsEmpty reports whether the set has no branches.
func (s *Set) IsEmpty() bool {
	return len(s.order) == 0
}

// Slice returns the branches in insertion order.
func (s *Set) Slice() []Branch {
	return append([]Branch(nil), s.order...)
}

// Sorted returns the branches in display order.
func (s *Set) Sorted() []Branch {
	out := s.Slice()
	Sort(out)
	return out
}
