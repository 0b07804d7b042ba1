package config

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/clozet/internal/artifact"
	"github.com/dshills/clozet/internal/config/loader"
	"github.com/dshills/clozet/internal/export"
	"github.com/dshills/clozet/internal/logging"
)

// Config is the fully resolved clozet configuration.
type Config struct {
	Worksheet WorksheetConfig `toml:"worksheet"`
	Selection SelectionConfig `toml:"selection"`
	Export    ExportConfig    `toml:"export"`
	UI        UIConfig        `toml:"ui"`
	Logging   LoggingConfig   `toml:"logging"`
}

// WorksheetConfig holds the initial worksheet state.
type WorksheetConfig struct {
	// Title is the worksheet title used by exports and file names.
	Title string `toml:"title"`

	// NumberGaps prefixes placeholders and answer lines with (n).
	NumberGaps bool `toml:"number_gaps"`

	// WordBank renders the shuffled word bank.
	WordBank bool `toml:"word_bank"`

	// Answers renders the answer section.
	Answers bool `toml:"answers"`

	// GapLength is the base placeholder width.
	GapLength int `toml:"gap_length"`

	// KeepFormatting preserves line breaks in the input.
	KeepFormatting bool `toml:"keep_formatting"`

	// Normalize applies Unicode NFC normalization before tokenizing.
	Normalize bool `toml:"normalize"`
}

// SelectionConfig holds selection behavior.
type SelectionConfig struct {
	// RangeMode starts the worksheet with range selection enabled.
	RangeMode bool `toml:"range_mode"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	// Format is the default export format.
	Format string `toml:"format"`

	// Dir is the directory exports are written to.
	Dir string `toml:"dir"`

	// WrapWidth wraps plain text output; 0 disables wrapping.
	WrapWidth int `toml:"wrap_width"`

	// Font is the PDF core font family.
	Font string `toml:"font"`

	// PageSize is the PDF page size.
	PageSize string `toml:"page_size"`
}

// UIConfig holds terminal colors as #rrggbb strings.
type UIConfig struct {
	Selected string `toml:"selected"`
	Range    string `toml:"range"`
	Anchor   string `toml:"anchor"`
	Muted    string `toml:"muted"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// File is the log destination; empty logs to stderr in batch mode and
	// nowhere in the interactive UI.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	s := artifact.DefaultSettings()
	return &Config{
		Worksheet: WorksheetConfig{
			NumberGaps: s.NumberGaps,
			WordBank:   s.IncludeWordBank,
			Answers:    s.SeparateAnswers,
			GapLength:  s.GapLength,
		},
		Export: ExportConfig{
			Format:   "text",
			Font:     "Helvetica",
			PageSize: "A4",
		},
		UI: UIConfig{
			Selected: "#f5c542",
			Range:    "#5fafd7",
			Anchor:   "#d75f5f",
			Muted:    "#808080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Settings returns the artifact settings described by the worksheet section.
func (c *Config) Settings() artifact.Settings {
	return artifact.Settings{
		NumberGaps:      c.Worksheet.NumberGaps,
		IncludeWordBank: c.Worksheet.WordBank,
		SeparateAnswers: c.Worksheet.Answers,
		GapLength:       c.Worksheet.GapLength,
	}
}

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	reject := func(path string, value any, msg string) {
		errs = append(errs, &ValidationError{Path: path, Value: value, Message: msg})
	}

	if c.Worksheet.GapLength < 1 {
		reject("worksheet.gap_length", c.Worksheet.GapLength, "must be at least 1")
	}
	if !slices.Contains(export.Formats(), c.Export.Format) {
		reject("export.format", c.Export.Format, "must be one of "+strings.Join(export.Formats(), ", "))
	}
	if c.Export.WrapWidth < 0 {
		reject("export.wrap_width", c.Export.WrapWidth, "must not be negative")
	}
	if !export.ValidPageSize(c.Export.PageSize) {
		reject("export.page_size", c.Export.PageSize, "unknown page size")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		reject("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}

	colors := []struct {
		path  string
		value string
	}{
		{"ui.selected", c.UI.Selected},
		{"ui.range", c.UI.Range},
		{"ui.anchor", c.UI.Anchor},
		{"ui.muted", c.UI.Muted},
	}
	for _, col := range colors {
		if _, err := colorful.Hex(col.value); err != nil {
			reject(col.path, col.value, "must be a #rrggbb color")
		}
	}

	return errors.Join(errs...)
}

// Map returns the configuration as a generic map, the form the loaders
// produce.
func (c *Config) Map() (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return m, nil
}

// decode converts a merged map into a Config by TOML round trip.
func decode(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding merged config: %w", err)
	}

	cfg := &Config{}
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Options selects the configuration sources passed to Load.
type Options struct {
	// Path is a TOML or YAML file. Empty skips the file layer.
	Path string

	// FS reads the file layer. Defaults to the OS file system.
	FS loader.FileSystem

	// Env reads the environment layer. Nil skips it.
	Env loader.Loader

	// Overrides holds command-line values keyed by dot-separated path.
	Overrides map[string]any
}

// Load resolves defaults, file, environment and overrides into a
// validated Config.
func Load(opts Options) (*Config, error) {
	merged, err := Default().Map()
	if err != nil {
		return nil, err
	}

	if opts.Path != "" {
		fsys := opts.FS
		if fsys == nil {
			fsys = loader.DefaultFS()
		}
		file, err := loader.LoadFile(fsys, opts.Path)
		if err != nil {
			return nil, err
		}
		if file == nil {
			return nil, fmt.Errorf("config file %s: not found", opts.Path)
		}
		merged = loader.DeepMerge(merged, file)
	}

	if opts.Env != nil {
		env, err := opts.Env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, env)
	}

	if len(opts.Overrides) > 0 {
		flags := make(map[string]any)
		for path, v := range opts.Overrides {
			loader.SetPath(flags, path, v)
		}
		merged = loader.DeepMerge(merged, flags)
	}

	cfg, err := decode(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
