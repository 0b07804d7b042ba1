package token

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits text into tokens.
// The zero value is not usable; create with New.
type Tokenizer struct {
	normalize bool
	form      norm.Form
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithNormalization applies the given Unicode normalization form to the
// text before splitting. Round trips are then exact against the normalized
// text, not the raw input.
func WithNormalization(form norm.Form) Option {
	return func(t *Tokenizer) {
		t.normalize = true
		t.form = form
	}
}

// New creates a tokenizer.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Normalize returns the text the tokenizer actually splits: Unicode
// normalized when configured, and with every line break replaced by one
// space when keepFormatting is false.
func (t *Tokenizer) Normalize(text string, keepFormatting bool) string {
	if t.normalize {
		text = t.form.String(text)
	}
	if !keepFormatting {
		text = flattenLineBreaks(text)
	}
	return text
}

// Tokenize splits text into tokens. Delimiters are retained, so
// Join(Tokenize(s, k)) == Normalize(s, k) for every input.
// Empty or whitespace-only input is not an error.
func (t *Tokenizer) Tokenize(text string, keepFormatting bool) []Token {
	text = t.Normalize(text, keepFormatting)
	if text == "" {
		return nil
	}

	tokens := make([]Token, 0, len(text)/3+1)
	emit := func(s string) {
		tokens = append(tokens, Token{
			Index: len(tokens),
			Text:  s,
			Kind:  classify(s),
		})
	}

	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case isSpace(r):
			if start < i {
				emit(text[start:i])
			}
			j := i + size
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if !isSpace(r2) {
					break
				}
				j += s2
			}
			emit(text[i:j])
			i, start = j, j
		case isPunct(r):
			if start < i {
				emit(text[start:i])
			}
			emit(text[i : i+size])
			i += size
			start = i
		default:
			i += size
		}
	}
	if start < len(text) {
		emit(text[start:])
	}
	return tokens
}

var defaultTokenizer = New()

// Tokenize splits text with the default tokenizer (no Unicode
// normalization).
func Tokenize(text string, keepFormatting bool) []Token {
	return defaultTokenizer.Tokenize(text, keepFormatting)
}

// Normalize returns the text Tokenize splits for the given mode.
func Normalize(text string, keepFormatting bool) string {
	return defaultTokenizer.Normalize(text, keepFormatting)
}

// flattenLineBreaks replaces each line break ("\r\n", "\r" or "\n") with a
// single space.
func flattenLineBreaks(text string) string {
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			sb.WriteByte(' ')
		case '\n':
			sb.WriteByte(' ')
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

func isPunct(r rune) bool {
	switch r {
	case '.', '!', '?', ',':
		return true
	}
	return false
}
