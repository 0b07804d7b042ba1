package tui

import (
	"errors"
	"fmt"

	"github.com/dshills/clozet/internal/config"
	"github.com/dshills/clozet/internal/tui/backend"
)

var (
	black = backend.RGB(0, 0, 0)
	white = backend.RGB(255, 255, 255)
)

// Theme holds the highlight colors of the token pane.
type Theme struct {
	Selected backend.Color
	Range    backend.Color
	Anchor   backend.Color
	Muted    backend.Color
}

// DefaultTheme returns the theme of the built-in configuration.
func DefaultTheme() Theme {
	t, _ := ThemeFromConfig(config.Default().UI)
	return t
}

// ThemeFromConfig parses the configured #rrggbb colors.
func ThemeFromConfig(ui config.UIConfig) (Theme, error) {
	var t Theme
	var errs []error
	parse := func(name, hex string, dst *backend.Color) {
		c, err := backend.ParseHex(hex)
		if err != nil {
			errs = append(errs, fmt.Errorf("ui.%s: %w", name, err))
			return
		}
		*dst = c
	}
	parse("selected", ui.Selected, &t.Selected)
	parse("range", ui.Range, &t.Range)
	parse("anchor", ui.Anchor, &t.Anchor)
	parse("muted", ui.Muted, &t.Muted)
	return t, errors.Join(errs...)
}

// highlight returns a style with bg as background and a readable
// foreground.
func highlight(bg backend.Color) backend.Style {
	return backend.DefaultStyle().
		WithBackground(bg).
		WithForeground(contrast(bg))
}

// contrast picks black or white text for the background by CIE lightness.
func contrast(bg backend.Color) backend.Color {
	l, _, _ := bg.Colorful().Lab()
	if l > 0.6 {
		return black
	}
	return white
}

// fill softens c for the whitespace inside a range gap.
func fill(c backend.Color) backend.Color {
	return backend.FromColorful(c.Colorful().BlendLab(black.Colorful(), 0.25))
}

func (t Theme) single() backend.Style {
	return highlight(t.Selected).With(backend.AttrBold)
}

func (t Theme) rangeWord() backend.Style {
	return highlight(t.Range).With(backend.AttrBold)
}

func (t Theme) rangeFill() backend.Style {
	return highlight(fill(t.Range))
}

func (t Theme) anchor() backend.Style {
	return highlight(t.Anchor).With(backend.AttrUnderline)
}

func (t Theme) muted() backend.Style {
	return backend.DefaultStyle().WithForeground(t.Muted)
}

func (t Theme) header() backend.Style {
	return backend.DefaultStyle().With(backend.AttrReverse)
}
