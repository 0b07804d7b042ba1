package gap

import "fmt"

// Kind distinguishes single-token gaps from range gaps.
type Kind uint8

const (
	// KindSingle blanks one word token.
	KindSingle Kind = iota
	// KindRange blanks a contiguous run of tokens as one blank.
	KindRange
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// NoRange is the RangeID of a single gap.
const NoRange = -1

// Gap is one logical blank covering the token indices [Start, End].
// For a single gap Start == End. Gap is an immutable value type.
type Gap struct {
	Kind    Kind
	Start   int
	End     int
	RangeID int
}

// Single creates a single-token gap.
func Single(index int) Gap {
	return Gap{Kind: KindSingle, Start: index, End: index, RangeID: NoRange}
}

// Range creates a range gap over [start, end] with the given id.
// The bounds are normalized so that Start <= End.
func Range(id, start, end int) Gap {
	if start > end {
		start, end = end, start
	}
	return Gap{Kind: KindRange, Start: start, End: end, RangeID: id}
}

// IsRange reports whether g is a range gap.
func (g Gap) IsRange() bool {
	return g.Kind == KindRange
}

// Len returns the number of tokens covered.
func (g Gap) Len() int {
	return g.End - g.Start + 1
}

// Contains reports whether index is covered by g.
func (g Gap) Contains(index int) bool {
	return index >= g.Start && index <= g.End
}

// Overlaps reports whether g shares at least one index with [start, end].
func (g Gap) Overlaps(start, end int) bool {
	return g.Start <= end && start <= g.End
}

// Indices returns the covered token indices in order.
func (g Gap) Indices() []int {
	out := make([]int, 0, g.Len())
	for i := g.Start; i <= g.End; i++ {
		out = append(out, i)
	}
	return out
}

// String returns a debug representation of the gap.
func (g Gap) String() string {
	if g.IsRange() {
		return fmt.Sprintf("Range#%d(%d..%d)", g.RangeID, g.Start, g.End)
	}
	return fmt.Sprintf("Single(%d)", g.Start)
}

// Delta describes what a toggle changed.
type Delta struct {
	Added   []Gap
	Removed []Gap
}

// IsEmpty reports whether nothing changed.
func (d Delta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}
