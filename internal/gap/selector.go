package gap

import "github.com/dshills/clozet/internal/token"

// State is the interactive state of a Selector.
type State uint8

const (
	// StateIdle means no anchor is recorded.
	StateIdle State = iota
	// StateAnchorSet means a previous click is waiting for a possible
	// range-completing click.
	StateAnchorSet
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnchorSet:
		return "anchor-set"
	default:
		return "unknown"
	}
}

const noAnchor = -1

// Selector mutates a gap Set for one tokenization epoch.
type Selector struct {
	tokens      []token.Token
	set         Set
	nextRangeID int
	anchor      int
	rangeMode   bool
}

// NewSelector creates a selector over the given token sequence.
// The tokens are borrowed and must not be modified by the caller.
func NewSelector(tokens []token.Token) *Selector {
	return &Selector{
		tokens: tokens,
		anchor: noAnchor,
	}
}

// Reset starts a new epoch over a freshly tokenized sequence.
// All gaps are released, the anchor is dropped and range ids restart.
// The range mode setting survives.
func (s *Selector) Reset(tokens []token.Token) Delta {
	removed := s.set.clear()
	s.tokens = tokens
	s.nextRangeID = 0
	s.anchor = noAnchor
	return Delta{Removed: removed}
}

// Tokens returns the token sequence the selector addresses.
func (s *Selector) Tokens() []token.Token {
	return s.tokens
}

// Gaps returns a read-only copy of the current gap set.
func (s *Selector) Gaps() *Set {
	return s.set.Clone()
}

// Len returns the number of gaps.
func (s *Selector) Len() int {
	return s.set.Len()
}

// State returns the interactive state.
func (s *Selector) State() State {
	if s.anchor == noAnchor {
		return StateIdle
	}
	return StateAnchorSet
}

// Anchor returns the recorded anchor index, if any.
func (s *Selector) Anchor() (int, bool) {
	return s.anchor, s.anchor != noAnchor
}

// RangeMode reports whether every click behaves as a shift-click.
func (s *Selector) RangeMode() bool {
	return s.rangeMode
}

// SetRangeMode toggles range mode. Enabling it drops any anchor so the next
// click starts a fresh range.
func (s *Selector) SetRangeMode(enabled bool) {
	s.rangeMode = enabled
	if enabled {
		s.anchor = noAnchor
	}
}

// Clear removes every gap and drops the anchor.
func (s *Selector) Clear() Delta {
	s.anchor = noAnchor
	return Delta{Removed: s.set.clear()}
}

// ToggleSingle toggles the gap at index.
//
// If index is covered by any gap, that whole gap is removed. Otherwise a
// single gap is created when the token is a word; non-word tokens outside a
// gap are ignored.
func (s *Selector) ToggleSingle(index int) (Delta, error) {
	if err := s.check(index); err != nil {
		return Delta{}, err
	}

	if _, pos, ok := s.set.Find(index); ok {
		return Delta{Removed: []Gap{s.set.removeAt(pos)}}, nil
	}
	if !s.tokens[index].IsWord() {
		return Delta{}, nil
	}

	removed := s.set.removeOverlapping(index, index)
	g := Single(index)
	s.set.add(g)
	return Delta{Added: []Gap{g}, Removed: removed}, nil
}

// ToggleRange toggles a range gap between anchor and end in either order.
//
// When the span lies entirely inside one existing range gap, that range is
// removed. Otherwise every gap overlapping the span is removed whole and a
// new range with a fresh id is created. A span without any word token is
// ignored.
func (s *Selector) ToggleRange(anchor, end int) (Delta, error) {
	if err := s.check(anchor); err != nil {
		return Delta{}, err
	}
	if err := s.check(end); err != nil {
		return Delta{}, err
	}

	start, stop, ok := s.wordSpan(min(anchor, end), max(anchor, end))
	if !ok {
		return Delta{}, nil
	}

	if pos, ok := s.enclosingRange(start, stop); ok {
		return Delta{Removed: []Gap{s.set.removeAt(pos)}}, nil
	}

	removed := s.set.removeOverlapping(start, stop)
	g := Range(s.nextRangeID, start, stop)
	s.nextRangeID++
	s.set.add(g)
	return Delta{Added: []Gap{g}, Removed: removed}, nil
}

// Click applies one interactive click on index.
//
// With shift held or range mode enabled, and an anchor recorded, the click
// toggles the range from the anchor. Otherwise it toggles the single gap at
// index. The anchor always moves to the clicked index, even when a click on
// a non-word token outside any gap changes nothing.
func (s *Selector) Click(index int, shift bool) (Delta, error) {
	if err := s.check(index); err != nil {
		return Delta{}, err
	}

	if (shift || s.rangeMode) && s.anchor != noAnchor {
		d, err := s.ToggleRange(s.anchor, index)
		if err != nil {
			return d, err
		}
		if s.rangeMode {
			s.anchor = noAnchor
		} else {
			s.anchor = index
		}
		return d, nil
	}

	d, err := s.ToggleSingle(index)
	if err != nil {
		return d, err
	}
	s.anchor = index
	return d, nil
}

// check fails fast on indices outside the token sequence.
func (s *Selector) check(index int) error {
	if index < 0 || index >= len(s.tokens) {
		return &IndexError{Index: index, Len: len(s.tokens)}
	}
	return nil
}

// wordSpan trims [start, end] to its outermost word tokens.
func (s *Selector) wordSpan(start, end int) (int, int, bool) {
	for start <= end && !s.tokens[start].IsWord() {
		start++
	}
	for end >= start && !s.tokens[end].IsWord() {
		end--
	}
	return start, end, start <= end
}

// enclosingRange returns the creation position of the range gap that covers
// every index of [start, end], if there is one.
func (s *Selector) enclosingRange(start, end int) (int, bool) {
	g, pos, ok := s.set.Find(start)
	if !ok || !g.IsRange() {
		return -1, false
	}
	if !g.Contains(end) {
		return -1, false
	}
	return pos, true
}
