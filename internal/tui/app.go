// Package tui is the interactive terminal front end.
//
// The screen has four parts: a header summarizing the worksheet settings,
// the token pane where words are clicked to become gaps, a preview of the
// generated worksheet and a status line. A left click toggles a single
// gap; a shift-click (or any click in range mode) toggles a range gap
// between the anchor and the clicked token.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dshills/clozet/internal/artifact"
	"github.com/dshills/clozet/internal/export"
	"github.com/dshills/clozet/internal/logging"
	"github.com/dshills/clozet/internal/notify"
	"github.com/dshills/clozet/internal/tui/backend"
	"github.com/dshills/clozet/internal/worksheet"
)

// App drives a worksheet from terminal events.
type App struct {
	backend backend.Backend
	ws      *worksheet.Worksheet
	theme   Theme
	log     *logging.Logger

	format     string
	dir        string
	exportOpts export.Options
	copyFn     func(export.Document, int) error

	panes         panes
	layout        *Layout
	scroll        int
	previewScroll int
	status        string

	lastButton backend.MouseButton
	doc        export.Document
	stale      atomic.Bool
	sub        *notify.Subscription
}

// Option configures an App.
type Option func(*App)

// WithTheme sets the highlight colors.
func WithTheme(t Theme) Option {
	return func(a *App) {
		a.theme = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithExport sets the format, directory and options used by the export key.
func WithExport(format, dir string, opts export.Options) Option {
	return func(a *App) {
		a.format = format
		a.dir = dir
		a.exportOpts = opts
	}
}

// WithClipboard replaces the clipboard writer used by the copy key.
func WithClipboard(fn func(export.Document, int) error) Option {
	return func(a *App) {
		a.copyFn = fn
	}
}

// New creates an App for ws drawing on b.
func New(b backend.Backend, ws *worksheet.Worksheet, opts ...Option) *App {
	a := &App{
		backend: b,
		ws:      ws,
		theme:   DefaultTheme(),
		log:     logging.Nop(),
		format:  "text",
		dir:     ".",
		copyFn:  export.Copy,
		layout:  NewLayout(nil, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithComponent("tui")
	a.stale.Store(true)
	a.sub = ws.Subscribe(a.onChange)
	return a
}

// Close stops following worksheet changes.
func (a *App) Close() {
	a.sub.Unsubscribe()
}

// Run initializes the backend and processes events until quit or ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer a.backend.Shutdown()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
		case <-done:
		}
	}()

	a.Draw()
	for {
		ev := a.backend.PollEvent()
		if ctx.Err() != nil {
			return nil
		}
		if !a.HandleEvent(ev) {
			return nil
		}
		a.Draw()
	}
}

// onChange runs on the goroutine that mutated the worksheet.
func (a *App) onChange(ev notify.Event) {
	a.stale.Store(true)
	a.log.Debug("worksheet %s changed", ev.Kind)
	if ev.Kind == notify.KindText {
		a.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	}
}

// document returns the preview document, regenerating it after a
// worksheet change so the word bank order stays put between redraws.
func (a *App) document() export.Document {
	if a.stale.Swap(false) {
		a.doc = a.ws.Document()
	}
	return a.doc
}

// HandleEvent applies one event. It returns false when the app should quit.
func (a *App) HandleEvent(ev backend.Event) bool {
	switch ev.Type {
	case backend.EventKey:
		return a.handleKey(ev)
	case backend.EventMouse:
		a.handleMouse(ev)
	}
	return true
}

func (a *App) handleMouse(ev backend.Event) {
	pressed := ev.MouseButton == backend.MouseLeft && a.lastButton != backend.MouseLeft
	a.lastButton = ev.MouseButton

	switch ev.MouseButton {
	case backend.MouseWheelUp:
		a.scrollBy(-1)
		return
	case backend.MouseWheelDown:
		a.scrollBy(1)
		return
	}
	if !pressed || !a.panes.tokens.Contains(ev.MouseX, ev.MouseY) {
		return
	}

	index, ok := a.layout.HitTest(ev.MouseX-a.panes.tokens.Left, ev.MouseY-a.panes.tokens.Top+a.scroll)
	if !ok {
		return
	}
	if _, err := a.ws.Click(index, ev.Mod.Has(backend.ModShift)); err != nil {
		a.fail("select", err)
		return
	}
	a.status = ""
}

func (a *App) handleKey(ev backend.Event) bool {
	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		return false
	case backend.KeyUp:
		a.scrollBy(-1)
		return true
	case backend.KeyDown:
		a.scrollBy(1)
		return true
	case backend.KeyPageUp:
		a.previewScroll = max(a.previewScroll-a.panes.preview.Height(), 0)
		return true
	case backend.KeyPageDown:
		a.previewScroll += max(a.panes.preview.Height(), 1)
		return true
	case backend.KeyRune:
	default:
		return true
	}

	a.status = ""
	switch ev.Rune {
	case 'q':
		return false
	case 'r':
		a.ws.SetRangeMode(!a.ws.RangeMode())
	case 'n':
		a.updateSettings(func(s *artifact.Settings) { s.NumberGaps = !s.NumberGaps })
	case 'b':
		a.updateSettings(func(s *artifact.Settings) { s.IncludeWordBank = !s.IncludeWordBank })
	case 'a':
		a.updateSettings(func(s *artifact.Settings) { s.SeparateAnswers = !s.SeparateAnswers })
	case '+', '=':
		a.updateSettings(func(s *artifact.Settings) { s.GapLength++ })
	case '-':
		if a.ws.Settings().GapLength > 1 {
			a.updateSettings(func(s *artifact.Settings) { s.GapLength-- })
		}
	case 'f':
		a.ws.SetKeepFormatting(!a.ws.KeepFormatting())
		a.scroll = 0
	case 'c':
		a.ws.Clear()
	case 'e':
		a.export()
	case 'y':
		a.copy()
	}
	return true
}

func (a *App) updateSettings(fn func(*artifact.Settings)) {
	if err := a.ws.UpdateSettings(fn); err != nil {
		a.fail("settings", err)
	}
}

func (a *App) export() {
	e, err := export.New(a.format, a.exportOpts)
	if err != nil {
		a.fail("export", err)
		return
	}
	path, err := export.Save(a.dir, e, a.document())
	if err != nil {
		a.fail("export", err)
		return
	}
	a.log.Info("exported %s", path)
	a.status = "saved " + path
}

func (a *App) copy() {
	if err := a.copyFn(a.document(), a.exportOpts.WrapWidth); err != nil {
		a.fail("copy", err)
		return
	}
	a.status = "copied to clipboard"
}

func (a *App) fail(op string, err error) {
	a.log.Warn("%s failed: %v", op, err)
	var ee *export.Error
	if errors.As(err, &ee) {
		err = ee.Err
	}
	a.status = fmt.Sprintf("%s failed: %v", op, err)
	a.backend.Beep()
}

func (a *App) scrollBy(n int) {
	a.scroll += n
	a.clampScroll()
}

func (a *App) clampScroll() {
	limit := max(a.layout.Rows()-a.panes.tokens.Height(), 0)
	a.scroll = min(max(a.scroll, 0), limit)
}

// Status returns the status line message.
func (a *App) Status() string {
	return a.status
}
