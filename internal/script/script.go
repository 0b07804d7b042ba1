// Package script drives a worksheet from a file instead of the pointer.
//
// Two forms are supported: a declarative YAML file listing selection
// steps, and a Lua program run in a sandboxed interpreter with a "cloze"
// module. Both address tokens by their 0-based index, or by searching for
// a word or phrase.
package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/clozet/internal/artifact"
	"github.com/dshills/clozet/internal/gap"
	"github.com/dshills/clozet/internal/token"
)

var (
	// ErrInvalidStep indicates a YAML step names no action or several.
	ErrInvalidStep = errors.New("invalid step")

	// ErrNotFound indicates a word or phrase does not occur in the text.
	ErrNotFound = errors.New("not found")

	// ErrUnknownSetting indicates a setting name the script cannot change.
	ErrUnknownSetting = errors.New("unknown setting")
)

// Error locates a script failure.
type Error struct {
	// Source is the script file name.
	Source string
	// Step is the 1-based YAML step number; 0 when not applicable.
	Step int
	Err  error
}

func (e *Error) Error() string {
	if e.Step > 0 {
		return fmt.Sprintf("%s: step %d: %v", e.Source, e.Step, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Target is the worksheet surface a script drives.
type Target interface {
	Tokens() []token.Token
	Gaps() *gap.Set
	SetText(text string)
	SetKeepFormatting(keep bool)
	SetTitle(title string)
	Title() string
	SetRangeMode(enabled bool)
	Settings() artifact.Settings
	SetSettings(s artifact.Settings) error
	ToggleSingle(index int) (gap.Delta, error)
	ToggleRange(anchor, end int) (gap.Delta, error)
	Click(index int, shift bool) (gap.Delta, error)
	Clear() gap.Delta
}

// IsLua reports whether path names a Lua script.
func IsLua(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".lua")
}

// FindWord returns the index of the n-th (1-based) word token equal to
// text, ignoring case. n < 1 selects the first.
func FindWord(tokens []token.Token, text string, n int) (int, bool) {
	if n < 1 {
		n = 1
	}
	for _, t := range tokens {
		if t.IsWord() && strings.EqualFold(t.Text, text) {
			n--
			if n == 0 {
				return t.Index, true
			}
		}
	}
	return -1, false
}

// FindPhrase returns the token span of the n-th (1-based) occurrence of
// phrase. Words and punctuation must match in order, ignoring case;
// whitespace and line breaks between them are not compared.
func FindPhrase(tokens []token.Token, phrase string, n int) (start, end int, ok bool) {
	if n < 1 {
		n = 1
	}

	want := significant(token.Tokenize(phrase, false))
	if len(want) == 0 {
		return -1, -1, false
	}
	have := significant(tokens)

	for i := 0; i+len(want) <= len(have); i++ {
		match := true
		for j, w := range want {
			if !strings.EqualFold(have[i+j].Text, w.Text) {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		n--
		if n == 0 {
			return have[i].Index, have[i+len(want)-1].Index, true
		}
	}
	return -1, -1, false
}

func significant(tokens []token.Token) []token.Token {
	var out []token.Token
	for _, t := range tokens {
		if t.Kind == token.KindWord || t.Kind == token.KindPunctuation {
			out = append(out, t)
		}
	}
	return out
}

// setSetting applies one named setting to the target.
func setSetting(t Target, name string, value any) error {
	if name == "keep_formatting" {
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s: want boolean, got %T", name, value)
		}
		t.SetKeepFormatting(b)
		return nil
	}

	s := t.Settings()
	switch name {
	case "number_gaps", "word_bank", "answers":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s: want boolean, got %T", name, value)
		}
		switch name {
		case "number_gaps":
			s.NumberGaps = b
		case "word_bank":
			s.IncludeWordBank = b
		default:
			s.SeparateAnswers = b
		}
	case "gap_length":
		n, ok := toInt(value)
		if !ok {
			return fmt.Errorf("%s: want integer, got %v", name, value)
		}
		s.GapLength = n
	default:
		return fmt.Errorf("%w %q", ErrUnknownSetting, name)
	}
	return t.SetSettings(s)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
