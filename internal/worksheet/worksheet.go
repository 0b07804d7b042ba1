// Package worksheet ties the tokenizer, selector and artifact generator
// into one editable cloze worksheet.
//
// A Worksheet owns the source text, its token sequence, the gap set and
// the artifact settings. Every mutation happens under one lock and is
// published to subscribers through a notify.Notifier. Replacing the text
// or toggling keep-formatting starts a new tokenization epoch: all gaps
// are released because their indices refer to the previous tokens.
package worksheet

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/clozet/internal/artifact"
	"github.com/dshills/clozet/internal/export"
	"github.com/dshills/clozet/internal/gap"
	"github.com/dshills/clozet/internal/logging"
	"github.com/dshills/clozet/internal/notify"
	"github.com/dshills/clozet/internal/token"
)

// Worksheet is a single cloze worksheet. It is safe for concurrent use.
type Worksheet struct {
	mu sync.Mutex

	id    uuid.UUID
	epoch uuid.UUID

	title          string
	text           string
	keepFormatting bool
	tokens         []token.Token
	selector       *gap.Selector
	settings       artifact.Settings

	tokenizer *token.Tokenizer
	generator *artifact.Generator
	notifier  *notify.Notifier
	ownNotify bool
	log       *logging.Logger
	now       func() time.Time
}

// Option configures a Worksheet.
type Option func(*Worksheet)

// WithLogger sets the logger. Defaults to a disabled logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Worksheet) {
		if l != nil {
			w.log = l
		}
	}
}

// WithTokenizer sets the tokenizer.
func WithTokenizer(t *token.Tokenizer) Option {
	return func(w *Worksheet) {
		if t != nil {
			w.tokenizer = t
		}
	}
}

// WithGenerator sets the artifact generator.
func WithGenerator(g *artifact.Generator) Option {
	return func(w *Worksheet) {
		if g != nil {
			w.generator = g
		}
	}
}

// WithNotifier publishes changes through n instead of a private notifier.
// The caller keeps ownership of n.
func WithNotifier(n *notify.Notifier) Option {
	return func(w *Worksheet) {
		if n != nil {
			w.notifier = n
			w.ownNotify = false
		}
	}
}

// WithSettings sets the initial artifact settings.
func WithSettings(s artifact.Settings) Option {
	return func(w *Worksheet) {
		w.settings = s
	}
}

// WithTitle sets the initial title.
func WithTitle(title string) Option {
	return func(w *Worksheet) {
		w.title = title
	}
}

// WithKeepFormatting sets the initial keep-formatting flag.
func WithKeepFormatting(keep bool) Option {
	return func(w *Worksheet) {
		w.keepFormatting = keep
	}
}

// WithRangeMode starts the worksheet in range mode.
func WithRangeMode(enabled bool) Option {
	return func(w *Worksheet) {
		w.selector.SetRangeMode(enabled)
	}
}

// WithClock sets the clock used to stamp exported documents.
func WithClock(now func() time.Time) Option {
	return func(w *Worksheet) {
		if now != nil {
			w.now = now
		}
	}
}

// New creates an empty worksheet.
func New(opts ...Option) *Worksheet {
	w := &Worksheet{
		id:        uuid.New(),
		epoch:     uuid.New(),
		selector:  gap.NewSelector(nil),
		settings:  artifact.DefaultSettings(),
		tokenizer: token.New(),
		generator: artifact.New(),
		notifier:  notify.New(),
		ownNotify: true,
		log:       logging.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("worksheet").WithField("worksheet", w.id.String())
	return w
}

// Close releases the worksheet's private notifier.
func (w *Worksheet) Close() {
	if w.ownNotify {
		w.notifier.Close()
	}
}

// ID returns the worksheet identifier.
func (w *Worksheet) ID() string {
	return w.id.String()
}

// Epoch returns the identifier of the current tokenization.
func (w *Worksheet) Epoch() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.epoch.String()
}

// Subscribe registers an observer for worksheet changes.
func (w *Worksheet) Subscribe(obs notify.Observer, kinds ...notify.Kind) *notify.Subscription {
	return w.notifier.Subscribe(obs, kinds...)
}

// publish must be called without w.mu held.
func (w *Worksheet) publish(kind notify.Kind, delta gap.Delta, epoch uuid.UUID) {
	w.notifier.Notify(notify.Event{Kind: kind, Delta: delta, Epoch: epoch.String()})
}

// Title returns the worksheet title.
func (w *Worksheet) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// SetTitle sets the worksheet title.
func (w *Worksheet) SetTitle(title string) {
	w.mu.Lock()
	if title == w.title {
		w.mu.Unlock()
		return
	}
	w.title = title
	epoch := w.epoch
	w.mu.Unlock()

	w.publish(notify.KindTitle, gap.Delta{}, epoch)
}

// Text returns the raw source text.
func (w *Worksheet) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.text
}

// KeepFormatting reports whether line breaks are preserved.
func (w *Worksheet) KeepFormatting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.keepFormatting
}

// SetText replaces the source text, re-tokenizes it and releases every gap.
func (w *Worksheet) SetText(text string) {
	w.mu.Lock()
	w.text = text
	delta, epoch := w.retokenizeLocked()
	w.mu.Unlock()

	w.publish(notify.KindText, delta, epoch)
}

// SetKeepFormatting changes line-break handling. A change re-tokenizes the
// text and releases every gap.
func (w *Worksheet) SetKeepFormatting(keep bool) {
	w.mu.Lock()
	if keep == w.keepFormatting {
		w.mu.Unlock()
		return
	}
	w.keepFormatting = keep
	delta, epoch := w.retokenizeLocked()
	w.mu.Unlock()

	w.publish(notify.KindText, delta, epoch)
}

func (w *Worksheet) retokenizeLocked() (gap.Delta, uuid.UUID) {
	w.tokens = w.tokenizer.Tokenize(w.text, w.keepFormatting)
	delta := w.selector.Reset(w.tokens)
	w.epoch = uuid.New()
	w.log.WithField("epoch", w.epoch.String()).Debug("tokenized %d tokens, released %d gaps",
		len(w.tokens), len(delta.Removed))
	return delta, w.epoch
}

// Tokens returns a copy of the current token sequence.
func (w *Worksheet) Tokens() []token.Token {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]token.Token, len(w.tokens))
	copy(out, w.tokens)
	return out
}

// Gaps returns a snapshot of the gap set.
func (w *Worksheet) Gaps() *gap.Set {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selector.Gaps()
}

// State returns the selection state.
func (w *Worksheet) State() gap.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selector.State()
}

// Anchor returns the pending range anchor, if any.
func (w *Worksheet) Anchor() (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selector.Anchor()
}

// RangeMode reports whether plain clicks act as shift-clicks.
func (w *Worksheet) RangeMode() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selector.RangeMode()
}

// SetRangeMode toggles range mode.
func (w *Worksheet) SetRangeMode(enabled bool) {
	w.mu.Lock()
	if enabled == w.selector.RangeMode() {
		w.mu.Unlock()
		return
	}
	w.selector.SetRangeMode(enabled)
	epoch := w.epoch
	w.mu.Unlock()

	w.publish(notify.KindMode, gap.Delta{}, epoch)
}

// Click handles a pointer click on the token at index.
func (w *Worksheet) Click(index int, shift bool) (gap.Delta, error) {
	return w.mutate(func(s *gap.Selector) (gap.Delta, error) {
		return s.Click(index, shift)
	})
}

// ToggleSingle toggles the gap at index.
func (w *Worksheet) ToggleSingle(index int) (gap.Delta, error) {
	return w.mutate(func(s *gap.Selector) (gap.Delta, error) {
		return s.ToggleSingle(index)
	})
}

// ToggleRange toggles a range gap between anchor and end.
func (w *Worksheet) ToggleRange(anchor, end int) (gap.Delta, error) {
	return w.mutate(func(s *gap.Selector) (gap.Delta, error) {
		return s.ToggleRange(anchor, end)
	})
}

// Clear removes every gap.
func (w *Worksheet) Clear() gap.Delta {
	delta, _ := w.mutate(func(s *gap.Selector) (gap.Delta, error) {
		return s.Clear(), nil
	})
	return delta
}

// mutate runs fn against the selector and publishes a non-empty delta.
func (w *Worksheet) mutate(fn func(*gap.Selector) (gap.Delta, error)) (gap.Delta, error) {
	w.mu.Lock()
	delta, err := fn(w.selector)
	epoch := w.epoch
	count := w.selector.Len()
	w.mu.Unlock()

	if err != nil {
		w.log.Warn("selection rejected: %v", err)
		return gap.Delta{}, err
	}
	if !delta.IsEmpty() {
		w.log.Debug("gaps +%d -%d (total %d)", len(delta.Added), len(delta.Removed), count)
		w.publish(notify.KindGaps, delta, epoch)
	}
	return delta, nil
}

// Settings returns the artifact settings.
func (w *Worksheet) Settings() artifact.Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings
}

// SetSettings replaces the artifact settings.
func (w *Worksheet) SetSettings(s artifact.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	if s == w.settings {
		w.mu.Unlock()
		return nil
	}
	w.settings = s
	epoch := w.epoch
	w.mu.Unlock()

	w.publish(notify.KindSettings, gap.Delta{}, epoch)
	return nil
}

// UpdateSettings applies fn to a copy of the settings and stores the result.
func (w *Worksheet) UpdateSettings(fn func(*artifact.Settings)) error {
	s := w.Settings()
	fn(&s)
	return w.SetSettings(s)
}

// Artifacts regenerates body, word bank and answers. The word bank is
// reshuffled on every call.
func (w *Worksheet) Artifacts() artifact.Artifacts {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generator.Generate(w.tokens, w.selector.Gaps(), w.settings)
}

// Document generates artifacts and snapshots them with the title for
// export.
func (w *Worksheet) Document() export.Document {
	a := w.Artifacts()
	return export.NewDocument(w.Title(), a, w.now())
}
