package gap

// Set is an ordered collection of disjoint gaps.
// Order is creation order: the first gap created is numbered 1.
type Set struct {
	gaps []Gap
}

// Len returns the number of gaps.
func (s *Set) Len() int {
	return len(s.gaps)
}

// All returns a copy of the gaps in creation order.
// The returned slice is safe to modify without affecting the Set.
func (s *Set) All() []Gap {
	out := make([]Gap, len(s.gaps))
	copy(out, s.gaps)
	return out
}

// At returns the gap at creation position i.
// Returns the zero Gap and false if i is out of range.
func (s *Set) At(i int) (Gap, bool) {
	if i < 0 || i >= len(s.gaps) {
		return Gap{}, false
	}
	return s.gaps[i], true
}

// Find returns the gap covering the token index and its creation position.
func (s *Set) Find(index int) (Gap, int, bool) {
	for pos, g := range s.gaps {
		if g.Contains(index) {
			return g, pos, true
		}
	}
	return Gap{}, -1, false
}

// Covered reports whether any gap covers the token index.
func (s *Set) Covered(index int) bool {
	_, _, ok := s.Find(index)
	return ok
}

// Number returns the 1-based creation number of g, or 0 if g is not in the
// set.
func (s *Set) Number(g Gap) int {
	for pos, other := range s.gaps {
		if other == g {
			return pos + 1
		}
	}
	return 0
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	return &Set{gaps: s.All()}
}

func (s *Set) add(g Gap) {
	s.gaps = append(s.gaps, g)
}

func (s *Set) removeAt(pos int) Gap {
	g := s.gaps[pos]
	s.gaps = append(s.gaps[:pos], s.gaps[pos+1:]...)
	return g
}

// removeOverlapping removes every gap sharing an index with [start, end].
// Partially overlapping gaps are removed whole.
func (s *Set) removeOverlapping(start, end int) []Gap {
	var removed []Gap
	kept := s.gaps[:0]
	for _, g := range s.gaps {
		if g.Overlaps(start, end) {
			removed = append(removed, g)
			continue
		}
		kept = append(kept, g)
	}
	s.gaps = kept
	return removed
}

func (s *Set) clear() []Gap {
	removed := s.gaps
	s.gaps = nil
	return removed
}
