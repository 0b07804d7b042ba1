package artifact

import (
	"fmt"
	"html"
	"math/rand/v2"
	"strings"

	"github.com/dshills/clozet/internal/gap"
	"github.com/dshills/clozet/internal/token"
)

// Fixed strings shared with the serializers.
const (
	WordBankHeading = "Word Bank"
	AnswersHeading  = "Answer Section"
	EntrySeparator  = " / "
	// AnswerBlank is the answer line placeholder; its width does not depend
	// on the gap length.
	AnswerBlank = "____________________________"
)

const nbsp = "\u00a0"

// Artifacts holds everything derived from one generation pass.
type Artifacts struct {
	Body        string
	WordBank    string
	Answers     string
	Entries     []string
	AnswerLines []string
	Gaps        int
}

// WordBankText returns the entries joined for plain-text display.
func (a Artifacts) WordBankText() string {
	return strings.Join(a.Entries, EntrySeparator)
}

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// Generator produces Artifacts. It holds no worksheet state.
type Generator struct {
	shuffler Shuffler
}

// Option configures a Generator.
type Option func(*Generator)

// WithShuffler sets the source used to order the word bank.
func WithShuffler(s Shuffler) Option {
	return func(g *Generator) {
		if s != nil {
			g.shuffler = s
		}
	}
}

// WithSeed makes the word bank order reproducible.
func WithSeed(seed uint64) Option {
	return WithShuffler(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// New creates a generator. Without options the word bank is shuffled with
// the process-wide random source.
func New(opts ...Option) *Generator {
	g := &Generator{shuffler: globalShuffler{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = New()

// Generate derives the artifacts with the default generator.
func Generate(tokens []token.Token, gaps *gap.Set, settings Settings) Artifacts {
	return defaultGenerator.Generate(tokens, gaps, settings)
}

// Generate derives body, word bank and answers. The word bank is reshuffled
// on every call.
func (g *Generator) Generate(tokens []token.Token, gaps *gap.Set, settings Settings) Artifacts {
	if gaps == nil {
		gaps = &gap.Set{}
	}
	a := Artifacts{
		Body: Body(tokens, gaps, settings),
		Gaps: gaps.Len(),
	}
	if gaps.Len() == 0 {
		return a
	}

	if settings.IncludeWordBank {
		a.Entries = g.entries(tokens, gaps)
		a.WordBank = wordBankHTML(a.Entries)
	}
	if settings.SeparateAnswers {
		a.AnswerLines = answerLines(gaps.Len(), settings.NumberGaps)
		a.Answers = answersHTML(a.AnswerLines)
	}
	return a
}

// Body renders the token sequence with every gap replaced by its
// placeholder. Line breaks are always kept, even inside a range gap.
func Body(tokens []token.Token, gaps *gap.Set, settings Settings) string {
	owner := make([]int, len(tokens))
	for i := range owner {
		owner[i] = -1
	}
	all := gaps.All()
	first := make([]int, len(all))
	for pos, gp := range all {
		first[pos] = firstWord(tokens, gp)
		for i := gp.Start; i <= gp.End && i < len(tokens); i++ {
			if i >= 0 {
				owner[i] = pos
			}
		}
	}

	var sb strings.Builder
	for i, t := range tokens {
		if t.IsLineBreak() {
			sb.WriteString(t.Text)
			continue
		}
		pos := owner[i]
		if pos < 0 {
			sb.WriteString(t.Text)
			continue
		}
		if i == first[pos] {
			sb.WriteString(placeholder(tokens, all[pos], pos+1, settings))
		}
	}
	return sb.String()
}

// Placeholder returns the unnumbered blank for gp.
func Placeholder(tokens []token.Token, gp gap.Gap, gapLength int) string {
	if gapLength < 1 {
		gapLength = 1
	}
	return strings.Repeat("_", placeholderWidth(tokens, gp, gapLength))
}

// Entry returns the word bank entry for gp: the token text for a single gap,
// the covered text with whitespace runs collapsed to one space for a range.
func Entry(tokens []token.Token, gp gap.Gap) string {
	if !gp.IsRange() {
		if gp.Start < 0 || gp.Start >= len(tokens) {
			return ""
		}
		return tokens[gp.Start].Text
	}
	var sb strings.Builder
	for i := max(gp.Start, 0); i <= gp.End && i < len(tokens); i++ {
		switch tokens[i].Kind {
		case token.KindWhitespace, token.KindLineBreak:
			sb.WriteByte(' ')
		default:
			sb.WriteString(tokens[i].Text)
		}
	}
	return sb.String()
}

func placeholder(tokens []token.Token, gp gap.Gap, number int, settings Settings) string {
	blank := Placeholder(tokens, gp, settings.gapLength())
	if settings.NumberGaps {
		return fmt.Sprintf("(%d)%s%s", number, nbsp, blank)
	}
	return blank
}

// placeholderWidth is gapLength for single gaps and
// max(gapLength, floor(1.5 * covered characters)) for ranges.
func placeholderWidth(tokens []token.Token, gp gap.Gap, gapLength int) int {
	if !gp.IsRange() {
		return gapLength
	}
	chars := token.CharCount(tokens, gp.Start, gp.End)
	return max(gapLength, chars*3/2)
}

func firstWord(tokens []token.Token, gp gap.Gap) int {
	for i := max(gp.Start, 0); i <= gp.End && i < len(tokens); i++ {
		if tokens[i].IsWord() {
			return i
		}
	}
	return gp.Start
}

func (g *Generator) entries(tokens []token.Token, gaps *gap.Set) []string {
	all := gaps.All()
	out := make([]string, len(all))
	for i, gp := range all {
		out[i] = Entry(tokens, gp)
	}
	g.shuffler.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func answerLines(n int, numbered bool) []string {
	lines := make([]string, n)
	for i := range lines {
		if numbered {
			lines[i] = fmt.Sprintf("(%d) %s", i+1, AnswerBlank)
		} else {
			lines[i] = AnswerBlank
		}
	}
	return lines
}

func wordBankHTML(entries []string) string {
	spans := make([]string, len(entries))
	for i, e := range entries {
		spans[i] = `<span class="word-bank-word">` + html.EscapeString(e) + `</span>`
	}
	return "<h3>" + WordBankHeading + `</h3><div class="word-bank-words">` +
		strings.Join(spans, EntrySeparator) + "</div>"
}

func answersHTML(lines []string) string {
	var sb strings.Builder
	sb.WriteString("<h3>" + AnswersHeading + "</h3>")
	for _, line := range lines {
		sb.WriteString("<p>" + html.EscapeString(line) + "</p>")
	}
	return sb.String()
}
