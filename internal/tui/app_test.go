package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/clozet/internal/config"
	"github.com/dshills/clozet/internal/export"
	"github.com/dshills/clozet/internal/gap"
	"github.com/dshills/clozet/internal/tui/backend"
	"github.com/dshills/clozet/internal/worksheet"
)

// Token indices of "The cat sat on the mat.":
// The=0 cat=2 sat=4 on=6 the=8 mat=10 .=11
const sample = "The cat sat on the mat."

func newTestApp(t *testing.T, opts ...Option) (*App, *backend.NullBackend, *worksheet.Worksheet) {
	t.Helper()
	ws := worksheet.New(worksheet.WithTitle("Animals"))
	t.Cleanup(ws.Close)
	ws.SetText(sample)

	b := backend.NewNullBackend(40, 12)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	a := New(b, ws, opts...)
	t.Cleanup(a.Close)
	a.Draw()
	return a, b, ws
}

func press(a *App, x, y int, mod backend.ModMask) {
	a.HandleEvent(backend.Event{Type: backend.EventMouse, MouseX: x, MouseY: y, MouseButton: backend.MouseLeft, Mod: mod})
	a.HandleEvent(backend.Event{Type: backend.EventMouse, MouseX: x, MouseY: y, MouseButton: backend.MouseNone})
	a.Draw()
}

func key(a *App, r rune) bool {
	ok := a.HandleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r})
	a.Draw()
	return ok
}

func TestAppDrawsTokens(t *testing.T) {
	_, b, _ := newTestApp(t)

	if got := b.Row(1); !strings.HasPrefix(got, sample) {
		t.Errorf("token row = %q, want prefix %q", got, sample)
	}
	if got := b.Row(0); !strings.Contains(got, "Animals") || !strings.Contains(got, "0 gaps") {
		t.Errorf("header = %q", got)
	}
	if got := b.Row(11); !strings.HasPrefix(got, "click gap") {
		t.Errorf("status = %q", got)
	}
}

func TestAppClickTogglesSingle(t *testing.T) {
	a, b, ws := newTestApp(t)

	// "cat" occupies columns 4-6 of the first token row.
	press(a, 5, 1, backend.ModNone)

	gaps := ws.Gaps().All()
	if len(gaps) != 1 || gaps[0] != gap.Single(2) {
		t.Fatalf("gaps = %v, want [Single(2)]", gaps)
	}
	if cell := b.GetCell(4, 1); cell.Style.Background.Set == false {
		t.Error("gapped word should be highlighted")
	}

	// The anchor is drawn over the gap; click again to remove it.
	press(a, 5, 1, backend.ModNone)
	if n := ws.Gaps().Len(); n != 0 {
		t.Errorf("gaps after second click = %d, want 0", n)
	}
}

func TestAppHeldButtonIsOneClick(t *testing.T) {
	a, _, ws := newTestApp(t)

	ev := backend.Event{Type: backend.EventMouse, MouseX: 5, MouseY: 1, MouseButton: backend.MouseLeft}
	a.HandleEvent(ev)
	a.HandleEvent(ev)
	a.HandleEvent(ev)

	if n := ws.Gaps().Len(); n != 1 {
		t.Errorf("gaps = %d, want 1", n)
	}
}

func TestAppShiftClickTogglesRange(t *testing.T) {
	a, b, ws := newTestApp(t)

	press(a, 5, 1, backend.ModNone)
	press(a, 20, 1, backend.ModShift)

	gaps := ws.Gaps().All()
	if len(gaps) != 1 {
		t.Fatalf("gaps = %v, want one range", gaps)
	}
	g := gaps[0]
	if !g.IsRange() || g.Start != 2 || g.End != 10 {
		t.Errorf("gap = %v, want range 2..10", g)
	}

	// Whitespace inside the range is filled with a softer color.
	word := b.GetCell(8, 1).Style.Background
	space := b.GetCell(7, 1).Style.Background
	if !space.Set || space == word {
		t.Errorf("range whitespace background = %+v, word background = %+v", space, word)
	}
}

func TestAppClickOutsideTokens(t *testing.T) {
	a, _, ws := newTestApp(t)

	press(a, 30, 1, backend.ModNone)
	press(a, 5, 0, backend.ModNone)
	press(a, 5, 10, backend.ModNone)

	if n := ws.Gaps().Len(); n != 0 {
		t.Errorf("gaps = %d, want 0", n)
	}
}

func TestAppKeys(t *testing.T) {
	a, _, ws := newTestApp(t)

	key(a, 'r')
	if !ws.RangeMode() {
		t.Error("r should enable range mode")
	}
	key(a, 'n')
	if ws.Settings().NumberGaps {
		t.Error("n should toggle numbering off")
	}
	key(a, 'b')
	if !ws.Settings().IncludeWordBank {
		t.Error("b should enable the word bank")
	}
	key(a, 'a')
	if !ws.Settings().SeparateAnswers {
		t.Error("a should enable the answer section")
	}

	length := ws.Settings().GapLength
	key(a, '+')
	if got := ws.Settings().GapLength; got != length+1 {
		t.Errorf("gap length after + = %d, want %d", got, length+1)
	}
	key(a, '-')
	key(a, '-')
	if got := ws.Settings().GapLength; got != length-1 {
		t.Errorf("gap length after - - = %d, want %d", got, length-1)
	}

	key(a, 'f')
	if !ws.KeepFormatting() {
		t.Error("f should enable keep formatting")
	}

	ws.ToggleSingle(2)
	key(a, 'c')
	if n := ws.Gaps().Len(); n != 0 {
		t.Errorf("gaps after c = %d, want 0", n)
	}

	if key(a, 'q') {
		t.Error("q should quit")
	}
	if a.HandleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyEscape}) {
		t.Error("Esc should quit")
	}
}

func TestAppGapLengthFloor(t *testing.T) {
	a, _, ws := newTestApp(t)

	for range ws.Settings().GapLength + 3 {
		key(a, '-')
	}
	if got := ws.Settings().GapLength; got != 1 {
		t.Errorf("gap length = %d, want 1", got)
	}
}

func TestAppPreview(t *testing.T) {
	a, b, _ := newTestApp(t)

	press(a, 5, 1, backend.ModNone)
	key(a, 'b')

	var screen []string
	for y := 0; y < 12; y++ {
		screen = append(screen, b.Row(y))
	}
	all := strings.Join(screen, "\n")
	if !strings.Contains(all, "Animals") {
		t.Error("preview should show the title")
	}
	if !strings.Contains(all, "(1)") {
		t.Errorf("preview should show the numbered gap:\n%s", all)
	}
	if !strings.Contains(all, "Word Bank") {
		t.Errorf("preview should show the word bank heading:\n%s", all)
	}
}

func TestAppExport(t *testing.T) {
	dir := t.TempDir()
	a, _, _ := newTestApp(t, WithExport("text", dir, export.Options{}))

	press(a, 5, 1, backend.ModNone)
	key(a, 'e')

	path := filepath.Join(dir, "Animals.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "Animals\n") {
		t.Errorf("export = %q", data)
	}
	if !strings.Contains(a.Status(), path) {
		t.Errorf("status = %q, want the saved path", a.Status())
	}
}

func TestAppExportUnknownFormat(t *testing.T) {
	a, _, ws := newTestApp(t, WithExport("rtf", t.TempDir(), export.Options{}))

	ws.ToggleSingle(2)
	key(a, 'e')

	if !strings.Contains(a.Status(), "export failed") {
		t.Errorf("status = %q", a.Status())
	}
	if n := ws.Gaps().Len(); n != 1 {
		t.Errorf("gaps after failed export = %d, want 1", n)
	}
}

func TestAppCopy(t *testing.T) {
	var copied export.Document
	a, _, ws := newTestApp(t, WithClipboard(func(doc export.Document, _ int) error {
		copied = doc
		return nil
	}))

	ws.ToggleSingle(10)
	key(a, 'y')

	if copied.Title != "Animals" || !strings.Contains(copied.Body, "(1)") {
		t.Errorf("copied = %+v", copied)
	}
	if a.Status() != "copied to clipboard" {
		t.Errorf("status = %q", a.Status())
	}
}

func TestAppCopyFailureKeepsState(t *testing.T) {
	a, _, ws := newTestApp(t, WithClipboard(func(export.Document, int) error {
		return &export.Error{Format: "clipboard", Err: errors.New("permission denied")}
	}))

	ws.ToggleSingle(10)
	key(a, 'y')

	if a.Status() != "copy failed: permission denied" {
		t.Errorf("status = %q", a.Status())
	}
	if n := ws.Gaps().Len(); n != 1 {
		t.Errorf("gaps after failed copy = %d, want 1", n)
	}
}

func TestAppScroll(t *testing.T) {
	ws := worksheet.New()
	defer ws.Close()
	ws.SetText(strings.Repeat("word ", 60))

	b := backend.NewNullBackend(20, 12)
	b.Init()
	a := New(b, ws)
	defer a.Close()
	a.Draw()

	a.HandleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyDown})
	a.Draw()
	if a.scroll != 1 {
		t.Errorf("scroll = %d, want 1", a.scroll)
	}

	// The first visible row now holds the second layout row.
	press(a, 0, 1, backend.ModNone)
	want, _ := a.layout.HitTest(0, 1)
	gaps := ws.Gaps().All()
	if len(gaps) != 1 || gaps[0].Start != want {
		t.Errorf("gaps = %v, want a gap at %d", gaps, want)
	}

	for range 100 {
		a.HandleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyUp})
	}
	if a.scroll != 0 {
		t.Errorf("scroll = %d, want 0", a.scroll)
	}
}

func TestAppRunQuits(t *testing.T) {
	ws := worksheet.New()
	defer ws.Close()
	b := backend.NewNullBackend(40, 12)
	a := New(b, ws)
	defer a.Close()

	b.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'})

	errc := make(chan error, 1)
	go func() { errc <- a.Run(context.Background()) }()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
}

func TestAppRunContextCancel(t *testing.T) {
	ws := worksheet.New()
	defer ws.Close()
	b := backend.NewNullBackend(40, 12)
	a := New(b, ws)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestThemeFromConfig(t *testing.T) {
	ui := config.Default().UI
	theme, err := ThemeFromConfig(ui)
	if err != nil {
		t.Fatalf("ThemeFromConfig: %v", err)
	}
	if theme.Selected != backend.RGB(0xf5, 0xc5, 0x42) {
		t.Errorf("Selected = %+v", theme.Selected)
	}

	ui.Range = "nope"
	if _, err := ThemeFromConfig(ui); err == nil || !strings.Contains(err.Error(), "ui.range") {
		t.Errorf("err = %v, want ui.range error", err)
	}
}

func TestContrast(t *testing.T) {
	if got := contrast(backend.RGB(0xf5, 0xc5, 0x42)); got != black {
		t.Errorf("contrast on yellow = %+v, want black", got)
	}
	if got := contrast(backend.RGB(0x20, 0x20, 0x60)); got != white {
		t.Errorf("contrast on navy = %+v, want white", got)
	}
}
