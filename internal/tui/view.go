package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/rivo/uniseg"

	"github.com/dshills/clozet/internal/artifact"
	"github.com/dshills/clozet/internal/export"
	"github.com/dshills/clozet/internal/gap"
	"github.com/dshills/clozet/internal/token"
	"github.com/dshills/clozet/internal/tui/backend"
)

const helpLine = "click gap  shift+click range  r range  n numbers  b bank  a answers  +/- length  f format  c clear  e export  y copy  q quit"

// panes splits the screen into header, token pane, preview and status.
type panes struct {
	header  int
	tokens  backend.Rect
	divider int
	preview backend.Rect
	status  int
}

func splitScreen(width, height int) panes {
	p := panes{header: 0, status: height - 1, divider: -1}
	body := height - 2
	if body < 5 {
		p.tokens = backend.Rect{Left: 0, Top: 1, Right: width, Bottom: 1 + max(body, 0)}
		return p
	}
	tokenRows := (body - 1) / 2
	p.tokens = backend.Rect{Left: 0, Top: 1, Right: width, Bottom: 1 + tokenRows}
	p.divider = p.tokens.Bottom
	p.preview = backend.Rect{Left: 0, Top: p.divider + 1, Right: width, Bottom: height - 1}
	return p
}

// Draw renders the whole screen.
func (a *App) Draw() {
	width, height := a.backend.Size()
	if width <= 0 || height <= 0 {
		return
	}
	a.backend.Clear()
	p := splitScreen(width, height)
	a.panes = p

	tokens := a.ws.Tokens()
	a.layout = NewLayout(tokens, p.tokens.Width())
	a.clampScroll()

	a.drawHeader(width)
	a.drawTokens(p.tokens, tokens)
	if p.divider >= 0 {
		a.drawDivider(p.divider, width)
		a.drawPreview(p.preview)
	}
	a.drawStatus(p.status, width)
	a.backend.Show()
}

func (a *App) drawHeader(width int) {
	title := a.ws.Title()
	if strings.TrimSpace(title) == "" {
		title = "untitled"
	}
	s := a.ws.Settings()
	mode := "single"
	if a.ws.RangeMode() {
		mode = "range"
	}
	if anchor, ok := a.ws.Anchor(); ok {
		mode += fmt.Sprintf(" @%d", anchor)
	}
	line := fmt.Sprintf(" %s | %d gaps | %s | length %d | numbers %s | bank %s | answers %s | keep lines %s",
		title, a.ws.Gaps().Len(), mode, s.GapLength,
		onOff(s.NumberGaps), onOff(s.IncludeWordBank), onOff(s.SeparateAnswers),
		onOff(a.ws.KeepFormatting()))

	style := a.theme.header()
	a.backend.Fill(backend.Rect{Left: 0, Top: 0, Right: width, Bottom: 1}, backend.NewCell(' ', style))
	a.drawText(0, 0, width, line, style)
}

func (a *App) drawTokens(rect backend.Rect, tokens []token.Token) {
	if len(tokens) == 0 {
		a.drawText(rect.Left+1, rect.Top, rect.Right, "(no text)", a.theme.muted())
		return
	}

	gaps := a.ws.Gaps()
	anchor, hasAnchor := a.ws.Anchor()
	for r := 0; r < rect.Height(); r++ {
		for _, p := range a.layout.Row(a.scroll + r) {
			style := a.tokenStyle(tokens[p.Index], gaps, anchor, hasAnchor)
			a.drawText(rect.Left+p.Col, rect.Top+r, rect.Right, p.Text, style)
		}
	}
}

func (a *App) tokenStyle(tok token.Token, gaps *gap.Set, anchor int, hasAnchor bool) backend.Style {
	if hasAnchor && tok.Index == anchor {
		return a.theme.anchor()
	}
	g, _, ok := gaps.Find(tok.Index)
	switch {
	case ok && g.IsRange() && tok.Kind == token.KindWhitespace:
		return a.theme.rangeFill()
	case ok && g.IsRange():
		return a.theme.rangeWord()
	case ok:
		return a.theme.single()
	case tok.Kind == token.KindPunctuation:
		return a.theme.muted()
	default:
		return backend.DefaultStyle()
	}
}

func (a *App) drawDivider(y, width int) {
	style := a.theme.muted()
	a.backend.Fill(backend.Rect{Left: 0, Top: y, Right: width, Bottom: y + 1}, backend.NewCell('─', style))
	a.drawText(2, y, width, " Preview ", style)
}

func (a *App) drawPreview(rect backend.Rect) {
	lines := a.previewLines(rect.Width() - 2)
	a.previewScroll = min(a.previewScroll, max(len(lines)-rect.Height(), 0))
	for r := 0; r < rect.Height(); r++ {
		i := a.previewScroll + r
		if i >= len(lines) {
			break
		}
		style := backend.DefaultStyle()
		switch lines[i] {
		case artifact.WordBankHeading, artifact.AnswersHeading:
			style = style.With(backend.AttrBold)
		}
		a.drawText(rect.Left+1, rect.Top+r, rect.Right, lines[i], style)
	}
}

func (a *App) previewLines(width int) []string {
	doc := a.document()
	if doc.IsEmpty() {
		return nil
	}
	return strings.Split(export.PlainText(doc, max(width, 1)), "\n")
}

func (a *App) drawStatus(y, width int) {
	msg, style := helpLine, a.theme.muted()
	if a.status != "" {
		msg, style = a.status, backend.DefaultStyle().With(backend.AttrBold)
	}
	a.drawText(0, y, width, truncate.StringWithTail(msg, uint(max(width, 0)), "…"), style)
}

// drawText draws s starting at column x, clipped at maxX. Wide clusters
// occupy two cells.
func (a *App) drawText(x, y, maxX int, s string, style backend.Style) int {
	state := -1
	for s != "" && x < maxX {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if w < 1 {
			w = 1
		}
		if x+w > maxX {
			break
		}
		r := []rune(cluster)[0]
		a.backend.SetCell(x, y, backend.Cell{Rune: r, Width: w, Style: style})
		for i := 1; i < w; i++ {
			a.backend.SetCell(x+i, y, backend.Cell{Width: 0, Style: style})
		}
		x += w
	}
	return x
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
