package tui

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/clozet/internal/token"
)

// tabWidth is the column width of a tab inside a whitespace token.
const tabWidth = 4

// Placement is the screen position of one token inside the token pane.
type Placement struct {
	Index int
	Row   int
	Col   int
	Width int
	Text  string
}

// Layout flows a token sequence into rows of a fixed width. Words are
// never split across rows; whitespace followed by a word that wraps, or at
// the start of a row, is dropped and line-break tokens start new rows.
type Layout struct {
	width int
	rows  [][]Placement
	pos   map[int]Placement
}

// NewLayout lays tokens out in rows of at most width columns.
func NewLayout(tokens []token.Token, width int) *Layout {
	l := &Layout{width: max(width, 1), pos: make(map[int]Placement, len(tokens))}
	if len(tokens) == 0 {
		return l
	}

	row, col := 0, 0
	for i, tok := range tokens {
		switch tok.Kind {
		case token.KindLineBreak:
			row += max(strings.Count(tok.Text, "\n"), 1)
			col = 0
			continue

		case token.KindWhitespace:
			text := strings.ReplaceAll(tok.Text, "\t", strings.Repeat(" ", tabWidth))
			w := max(uniseg.StringWidth(text), 1)
			if col == 0 {
				continue
			}
			if col+w+nextWordWidth(tokens, i) > l.width {
				row++
				col = 0
				continue
			}
			l.place(Placement{Index: tok.Index, Row: row, Col: col, Width: w, Text: text})
			col += w

		default:
			w := max(uniseg.StringWidth(tok.Text), 1)
			if col > 0 && col+w > l.width {
				row++
				col = 0
			}
			l.place(Placement{Index: tok.Index, Row: row, Col: col, Width: w, Text: tok.Text})
			col += w
		}
	}

	for len(l.rows) <= row {
		l.rows = append(l.rows, nil)
	}
	return l
}

// nextWordWidth returns the width of the token after i when it is a word
// or punctuation, and zero otherwise.
func nextWordWidth(tokens []token.Token, i int) int {
	if i+1 >= len(tokens) {
		return 0
	}
	next := tokens[i+1]
	if next.Kind != token.KindWord && next.Kind != token.KindPunctuation {
		return 0
	}
	return max(uniseg.StringWidth(next.Text), 1)
}

func (l *Layout) place(p Placement) {
	for len(l.rows) <= p.Row {
		l.rows = append(l.rows, nil)
	}
	l.rows[p.Row] = append(l.rows[p.Row], p)
	l.pos[p.Index] = p
}

// Width returns the layout width.
func (l *Layout) Width() int {
	return l.width
}

// Rows returns the number of rows.
func (l *Layout) Rows() int {
	return len(l.rows)
}

// Row returns the placements on row r in column order.
func (l *Layout) Row(r int) []Placement {
	if r < 0 || r >= len(l.rows) {
		return nil
	}
	return l.rows[r]
}

// Position returns where the token at index was placed. Line breaks and
// whitespace dropped at a row start have no position.
func (l *Layout) Position(index int) (Placement, bool) {
	p, ok := l.pos[index]
	return p, ok
}

// HitTest returns the index of the token under column col of row r.
func (l *Layout) HitTest(col, r int) (int, bool) {
	for _, p := range l.Row(r) {
		if col >= p.Col && col < p.Col+p.Width {
			return p.Index, true
		}
	}
	return 0, false
}
