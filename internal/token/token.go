package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind uint8

const (
	// KindWord is any run of characters that is neither whitespace nor a
	// delimiting punctuation mark.
	KindWord Kind = iota
	// KindWhitespace is a run of whitespace without a line break.
	KindWhitespace
	// KindPunctuation is a single '.', '!', '?' or ','.
	KindPunctuation
	// KindLineBreak is a whitespace run containing at least one '\n'.
	KindLineBreak
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindWhitespace:
		return "whitespace"
	case KindPunctuation:
		return "punctuation"
	case KindLineBreak:
		return "linebreak"
	default:
		return "unknown"
	}
}

// Token is the smallest addressable unit of worksheet text.
// Token is an immutable value type.
type Token struct {
	Index int
	Text  string
	Kind  Kind
}

// IsWord reports whether the token can be gapped on its own.
func (t Token) IsWord() bool {
	return t.Kind == KindWord
}

// IsLineBreak reports whether the token carries a line break.
func (t Token) IsLineBreak() bool {
	return t.Kind == KindLineBreak
}

// Len returns the number of characters (runes) in the token text.
func (t Token) Len() int {
	return utf8.RuneCountInString(t.Text)
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%d:%s(%q)", t.Index, t.Kind, t.Text)
}

// Join concatenates the text of tokens in slice order.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// CharCount returns the total rune count of tokens[start..end] inclusive.
// Out-of-range bounds are clamped.
func CharCount(tokens []Token, start, end int) int {
	if start < 0 {
		start = 0
	}
	if end >= len(tokens) {
		end = len(tokens) - 1
	}
	n := 0
	for i := start; i <= end; i++ {
		n += tokens[i].Len()
	}
	return n
}

// classify determines the kind of a non-empty token text.
func classify(text string) Kind {
	if strings.ContainsRune(text, '\n') {
		return KindLineBreak
	}
	r, size := utf8.DecodeRuneInString(text)
	if size == len(text) && isPunct(r) {
		return KindPunctuation
	}
	if strings.TrimFunc(text, isSpace) == "" {
		return KindWhitespace
	}
	return KindWord
}
