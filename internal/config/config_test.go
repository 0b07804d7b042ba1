package config

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/dshills/clozet/internal/config/loader"
)

type memFS map[string]string

func (m memFS) Open(name string) (fs.File, error) { return nil, fs.ErrNotExist }

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m[path]; !ok {
		return nil, fs.ErrNotExist
	}
	return fileInfo(path), nil
}

type fileInfo string

func (f fileInfo) Name() string       { return string(f) }
func (f fileInfo) Size() int64        { return 0 }
func (f fileInfo) Mode() fs.FileMode  { return 0644 }
func (f fileInfo) ModTime() time.Time { return time.Time{} }
func (f fileInfo) IsDir() bool        { return false }
func (f fileInfo) Sys() any           { return nil }

type staticLoader map[string]any

func (s staticLoader) Load() (map[string]any, error) { return s, nil }

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	s := cfg.Settings()
	if !s.NumberGaps || s.IncludeWordBank || s.SeparateAnswers || s.GapLength != 10 {
		t.Errorf("Settings() = %+v", s)
	}
	if cfg.Export.Format != "text" {
		t.Errorf("Export.Format = %q", cfg.Export.Format)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Worksheet.GapLength != 10 || cfg.Logging.Level != "info" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Precedence(t *testing.T) {
	fsys := memFS{
		"/clozet.toml": `
[worksheet]
title = "From file"
gap_length = 12
word_bank = true

[export]
format = "pdf"
`,
	}
	env := staticLoader{
		"worksheet": map[string]any{"gap_length": int64(14)},
		"logging":   map[string]any{"level": "debug"},
	}

	cfg, err := Load(Options{
		Path:      "/clozet.toml",
		FS:        fsys,
		Env:       env,
		Overrides: map[string]any{"worksheet.title": "From flag"},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Worksheet.Title != "From flag" {
		t.Errorf("Title = %q, want flag override", cfg.Worksheet.Title)
	}
	if cfg.Worksheet.GapLength != 14 {
		t.Errorf("GapLength = %d, want env value 14", cfg.Worksheet.GapLength)
	}
	if !cfg.Worksheet.WordBank {
		t.Error("WordBank = false, want file value")
	}
	if cfg.Export.Format != "pdf" {
		t.Errorf("Format = %q, want pdf", cfg.Export.Format)
	}
	if !cfg.Worksheet.NumberGaps {
		t.Error("NumberGaps default lost")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_YAML(t *testing.T) {
	fsys := memFS{"/c.yaml": "selection:\n  range_mode: true\nui:\n  muted: \"#101010\"\n"}

	cfg, err := Load(Options{Path: "/c.yaml", FS: fsys})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Selection.RangeMode || cfg.UI.Muted != "#101010" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(Options{Path: "/none.toml", FS: memFS{}})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(Options{Path: "/bad.toml", FS: memFS{"/bad.toml": "[worksheet"}})
	var pe *loader.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *loader.ParseError, got %v", err)
	}
}

func TestLoad_TypeMismatch(t *testing.T) {
	env := staticLoader{"worksheet": map[string]any{"gap_length": "wide"}}
	if _, err := Load(Options{Env: env}); err == nil {
		t.Fatal("expected decode error for string gap_length")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"gap length", func(c *Config) { c.Worksheet.GapLength = 0 }, "worksheet.gap_length"},
		{"format", func(c *Config) { c.Export.Format = "rtf" }, "export.format"},
		{"wrap", func(c *Config) { c.Export.WrapWidth = -1 }, "export.wrap_width"},
		{"page size", func(c *Config) { c.Export.PageSize = "B9" }, "export.page_size"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"color", func(c *Config) { c.UI.Anchor = "red" }, "ui.anchor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want ErrValidationFailed", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Path != tt.path {
				t.Errorf("ValidationError = %+v, want path %s", ve, tt.path)
			}
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Worksheet.GapLength = -2
	cfg.UI.Range = "#zzzzzz"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "worksheet.gap_length") || !strings.Contains(msg, "ui.range") {
		t.Errorf("error = %q, want both problems", msg)
	}
}
