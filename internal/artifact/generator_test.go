package artifact

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/dshills/clozet/internal/gap"
	"github.com/dshills/clozet/internal/token"
)

type reverseShuffler struct {
	calls int
}

func (r *reverseShuffler) Shuffle(n int, swap func(i, j int)) {
	r.calls++
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func selectorFor(t *testing.T, text string, keep bool) (*gap.Selector, []token.Token) {
	t.Helper()
	tokens := token.Tokenize(text, keep)
	return gap.NewSelector(tokens), tokens
}

func TestBody_SingleNumbered(t *testing.T) {
	sel, tokens := selectorFor(t, "The quick fox", false)
	if _, err := sel.ToggleSingle(4); err != nil {
		t.Fatal(err)
	}

	a := Generate(tokens, sel.Gaps(), Settings{NumberGaps: true, GapLength: 5})
	want := "The quick (1)\u00a0_____"
	if a.Body != want {
		t.Errorf("Body = %q, want %q", a.Body, want)
	}
}

func TestBody_RangePlaceholderLength(t *testing.T) {
	sel, tokens := selectorFor(t, "The quick fox", false)
	if _, err := sel.ToggleRange(2, 4); err != nil {
		t.Fatal(err)
	}

	a := Generate(tokens, sel.Gaps(), Settings{GapLength: 5})
	want := "The " + strings.Repeat("_", 13)
	if a.Body != want {
		t.Errorf("Body = %q, want %q", a.Body, want)
	}

	// the gap length wins when it is longer than the scaled text
	a = Generate(tokens, sel.Gaps(), Settings{GapLength: 20})
	if got := strings.Count(a.Body, "_"); got != 20 {
		t.Errorf("placeholder width = %d, want 20", got)
	}
}

func TestBody_ToggleTwiceRestoresText(t *testing.T) {
	text := "The quick fox jumps."
	sel, tokens := selectorFor(t, text, false)
	for i := 0; i < 2; i++ {
		if _, err := sel.ToggleSingle(2); err != nil {
			t.Fatal(err)
		}
	}
	a := Generate(tokens, sel.Gaps(), DefaultSettings())
	if a.Body != text {
		t.Errorf("Body = %q, want %q", a.Body, text)
	}
}

func TestBody_LineBreakInsideRangeKept(t *testing.T) {
	sel, tokens := selectorFor(t, "red\nblue sky", true)
	// 0 red  1 \n  2 blue  3 ' '  4 sky
	if _, err := sel.ToggleRange(0, 2); err != nil {
		t.Fatal(err)
	}
	a := Generate(tokens, sel.Gaps(), Settings{GapLength: 3})
	// "red\nblue" is 8 chars -> 12 underscores, emitted at "red"
	want := strings.Repeat("_", 12) + "\n sky"
	if a.Body != want {
		t.Errorf("Body = %q, want %q", a.Body, want)
	}
}

func TestBody_NumbersFollowCreationOrder(t *testing.T) {
	sel, tokens := selectorFor(t, "one two three four", false)
	// 0 one 2 two 4 three 6 four
	if _, err := sel.ToggleSingle(6); err != nil {
		t.Fatal(err)
	}
	if _, err := sel.ToggleRange(0, 2); err != nil {
		t.Fatal(err)
	}
	a := Generate(tokens, sel.Gaps(), Settings{NumberGaps: true, GapLength: 2, SeparateAnswers: true})

	if !strings.HasPrefix(a.Body, "(2)\u00a0") {
		t.Errorf("range created second should be numbered 2: %q", a.Body)
	}
	if !strings.HasSuffix(a.Body, "(1)\u00a0__") {
		t.Errorf("single created first should be numbered 1: %q", a.Body)
	}
	if a.AnswerLines[0] != "(1) "+AnswerBlank || a.AnswerLines[1] != "(2) "+AnswerBlank {
		t.Errorf("AnswerLines = %q", a.AnswerLines)
	}
}

func TestWordBank_MembershipAndSeparator(t *testing.T) {
	sel, tokens := selectorFor(t, "The fox saw a dog", false)
	// 2 fox, 8 dog
	for _, i := range []int{2, 8} {
		if _, err := sel.ToggleSingle(i); err != nil {
			t.Fatal(err)
		}
	}
	a := Generate(tokens, sel.Gaps(), Settings{IncludeWordBank: true, GapLength: 3})

	got := append([]string(nil), a.Entries...)
	sort.Strings(got)
	if len(got) != 2 || got[0] != "dog" || got[1] != "fox" {
		t.Fatalf("Entries = %q, want {dog, fox}", a.Entries)
	}
	text := a.WordBankText()
	if text != "fox / dog" && text != "dog / fox" {
		t.Errorf("WordBankText = %q", text)
	}
	if !strings.Contains(a.WordBank, `<span class="word-bank-word">fox</span>`) ||
		!strings.Contains(a.WordBank, " / ") ||
		!strings.HasPrefix(a.WordBank, "<h3>Word Bank</h3>") {
		t.Errorf("WordBank HTML = %q", a.WordBank)
	}
}

func TestWordBank_RangeEntry(t *testing.T) {
	sel, tokens := selectorFor(t, "Hello, big\nworld!", true)
	// 0 Hello 1 , 2 ' ' 3 big 4 \n 5 world 6 !
	if _, err := sel.ToggleRange(0, 5); err != nil {
		t.Fatal(err)
	}
	a := Generate(tokens, sel.Gaps(), Settings{IncludeWordBank: true, GapLength: 1})
	if len(a.Entries) != 1 || a.Entries[0] != "Hello, big world" {
		t.Errorf("Entries = %q, want [\"Hello, big world\"]", a.Entries)
	}
}

func TestEntry_RangeJoinsCoveredText(t *testing.T) {
	tokens := token.Tokenize("the fox,  dog.\ncat", true)
	// 0 the 1 ' ' 2 fox 3 , 4 '  ' 5 dog 6 . 7 \n 8 cat
	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{"punctuation attached", 2, 5, "fox, dog"},
		{"whitespace run collapsed", 0, 5, "the fox, dog"},
		{"line break as space", 5, 8, "dog. cat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Entry(tokens, gap.Range(0, tt.start, tt.end)); got != tt.want {
				t.Errorf("Entry = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWordBank_ShuffledEveryCall(t *testing.T) {
	sel, tokens := selectorFor(t, "a b c", false)
	for _, i := range []int{0, 2, 4} {
		if _, err := sel.ToggleSingle(i); err != nil {
			t.Fatal(err)
		}
	}
	shuf := &reverseShuffler{}
	g := New(WithShuffler(shuf))
	settings := Settings{IncludeWordBank: true, GapLength: 1}

	a := g.Generate(tokens, sel.Gaps(), settings)
	if strings.Join(a.Entries, ",") != "c,b,a" {
		t.Errorf("Entries = %q, want reversed", a.Entries)
	}
	g.Generate(tokens, sel.Gaps(), settings)
	if shuf.calls != 2 {
		t.Errorf("shuffle calls = %d, want 2", shuf.calls)
	}
}

func TestWithSeed_Reproducible(t *testing.T) {
	sel, tokens := selectorFor(t, "one two three four five six", false)
	for i := 0; i < len(tokens); i += 2 {
		if _, err := sel.ToggleSingle(i); err != nil {
			t.Fatal(err)
		}
	}
	settings := Settings{IncludeWordBank: true, GapLength: 1}
	a := New(WithSeed(7)).Generate(tokens, sel.Gaps(), settings)
	b := New(WithSeed(7)).Generate(tokens, sel.Gaps(), settings)
	if a.WordBankText() != b.WordBankText() {
		t.Errorf("same seed gave %q and %q", a.WordBankText(), b.WordBankText())
	}
}

func TestGapCountConsistency(t *testing.T) {
	sel, tokens := selectorFor(t, "The quick brown fox jumps over the lazy dog", false)
	steps := [][2]int{{0, 0}, {2, 6}, {10, 10}, {14, 16}}
	for _, s := range steps {
		if _, err := sel.ToggleRange(s[0], s[1]); err != nil {
			t.Fatal(err)
		}
	}
	a := Generate(tokens, sel.Gaps(), Settings{IncludeWordBank: true, SeparateAnswers: true, GapLength: 4})

	if a.Gaps != 4 || len(a.Entries) != 4 || len(a.AnswerLines) != 4 {
		t.Errorf("gaps=%d entries=%d answers=%d, want 4 each", a.Gaps, len(a.Entries), len(a.AnswerLines))
	}
	if n := strings.Count(a.WordBank, "<span"); n != 4 {
		t.Errorf("word bank spans = %d, want 4", n)
	}
	if n := strings.Count(a.Answers, "<p>"); n != 4 {
		t.Errorf("answer paragraphs = %d, want 4", n)
	}
}

func TestDisabledSectionsAreEmpty(t *testing.T) {
	sel, tokens := selectorFor(t, "The quick fox", false)
	a := Generate(tokens, sel.Gaps(), Settings{IncludeWordBank: true, SeparateAnswers: true, GapLength: 3})
	if a.WordBank != "" || a.Answers != "" || a.Entries != nil {
		t.Errorf("empty gap set produced %+v", a)
	}

	if _, err := sel.ToggleSingle(0); err != nil {
		t.Fatal(err)
	}
	a = Generate(tokens, sel.Gaps(), Settings{GapLength: 3})
	if a.WordBank != "" || a.Answers != "" {
		t.Errorf("disabled sections produced %+v", a)
	}
}

func TestAnswers_Unnumbered(t *testing.T) {
	sel, tokens := selectorFor(t, "x", false)
	if _, err := sel.ToggleSingle(0); err != nil {
		t.Fatal(err)
	}
	a := Generate(tokens, sel.Gaps(), Settings{SeparateAnswers: true, GapLength: 3})
	if a.AnswerLines[0] != AnswerBlank {
		t.Errorf("AnswerLines[0] = %q", a.AnswerLines[0])
	}
	want := "<h3>Answer Section</h3><p>" + AnswerBlank + "</p>"
	if a.Answers != want {
		t.Errorf("Answers = %q, want %q", a.Answers, want)
	}
}

func TestWordBank_EscapesHTML(t *testing.T) {
	sel, tokens := selectorFor(t, "a <b>&c", false)
	if _, err := sel.ToggleSingle(2); err != nil {
		t.Fatal(err)
	}
	a := Generate(tokens, sel.Gaps(), Settings{IncludeWordBank: true, GapLength: 1})
	if !strings.Contains(a.WordBank, "&lt;b&gt;&amp;c") {
		t.Errorf("WordBank = %q", a.WordBank)
	}
	if a.Entries[0] != "<b>&c" {
		t.Errorf("Entries[0] = %q", a.Entries[0])
	}
}

func TestEmptyInput(t *testing.T) {
	a := Generate(nil, nil, DefaultSettings())
	if a.Body != "" || a.Gaps != 0 {
		t.Errorf("empty input produced %+v", a)
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Errorf("DefaultSettings invalid: %v", err)
	}
	err := Settings{GapLength: 0}.Validate()
	if !errors.Is(err, ErrInvalidGapLength) {
		t.Errorf("err = %v, want ErrInvalidGapLength", err)
	}
}
