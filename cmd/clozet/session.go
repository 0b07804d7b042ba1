package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/clozet/internal/artifact"
	"github.com/dshills/clozet/internal/config"
	"github.com/dshills/clozet/internal/export"
	"github.com/dshills/clozet/internal/logging"
	"github.com/dshills/clozet/internal/notify"
	"github.com/dshills/clozet/internal/script"
	"github.com/dshills/clozet/internal/source"
	"github.com/dshills/clozet/internal/token"
	"github.com/dshills/clozet/internal/tui"
	"github.com/dshills/clozet/internal/tui/backend"
	"github.com/dshills/clozet/internal/worksheet"
)

// session ties one worksheet to its configuration.
type session struct {
	cfg  *config.Config
	opts *options
	log  *logging.Logger
	ws   *worksheet.Worksheet

	// newBackend creates the terminal for the interactive UI.
	newBackend func() (backend.Backend, error)
}

func newSession(cfg *config.Config, opts *options, log *logging.Logger) *session {
	var tokOpts []token.Option
	if cfg.Worksheet.Normalize {
		tokOpts = append(tokOpts, token.WithNormalization(norm.NFC))
	}
	var genOpts []artifact.Option
	if opts.Seed != 0 {
		genOpts = append(genOpts, artifact.WithSeed(opts.Seed))
	}

	ws := worksheet.New(
		worksheet.WithLogger(log),
		worksheet.WithTokenizer(token.New(tokOpts...)),
		worksheet.WithGenerator(artifact.New(genOpts...)),
		worksheet.WithSettings(cfg.Settings()),
		worksheet.WithTitle(cfg.Worksheet.Title),
		worksheet.WithKeepFormatting(cfg.Worksheet.KeepFormatting),
		worksheet.WithRangeMode(cfg.Selection.RangeMode),
	)
	ws.Subscribe(func(ev notify.Event) {
		log.Debug("%s changed: +%d -%d gaps", ev.Kind, len(ev.Delta.Added), len(ev.Delta.Removed))
	}, notify.KindText, notify.KindSettings, notify.KindMode)

	return &session{
		cfg:  cfg,
		opts: opts,
		log:  log,
		ws:   ws,
		newBackend: func() (backend.Backend, error) {
			return backend.NewTerminal()
		},
	}
}

func (s *session) Close() {
	s.ws.Close()
}

func (s *session) exportOptions() export.Options {
	return export.Options{
		WrapWidth: s.cfg.Export.WrapWidth,
		Font:      s.cfg.Export.Font,
		PageSize:  s.cfg.Export.PageSize,
	}
}

// applyScript runs the selection script against the worksheet.
func (s *session) applyScript(ctx context.Context, stderr io.Writer) error {
	path := s.opts.Script
	if path == "" {
		return nil
	}
	if script.IsLua(path) {
		return script.NewLuaRunner(script.WithOutput(stderr)).RunFile(ctx, s.ws, path)
	}
	f, err := script.LoadYAML(path)
	if err != nil {
		return err
	}
	return f.Apply(s.ws)
}

// runBatch applies the script and writes the worksheet once, or after
// every change of the input file with -watch.
func (s *session) runBatch(ctx context.Context, stdout, stderr io.Writer) error {
	if err := s.produce(ctx, stdout, stderr); err != nil {
		return err
	}
	if !s.opts.Watch {
		return nil
	}

	w, err := source.Watch(s.opts.Input,
		source.WithEncoding(s.opts.Encoding),
		source.WithInitial(s.ws.Text()))
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.opts.Input, err)
	}
	defer w.Close()
	s.log.Info("watching %s", s.opts.Input)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			s.log.Warn("watch: %v", err)
		case c, ok := <-w.Changes():
			if !ok {
				return nil
			}
			s.log.Info("%s changed, regenerating", c.Path)
			s.ws.SetText(c.Text)
			if err := s.produce(ctx, stdout, stderr); err != nil {
				// Keep watching; the next save may fix the script target.
				s.log.Error("%v", err)
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
		}
	}
}

// produce runs the script and emits the configured outputs.
func (s *session) produce(ctx context.Context, stdout, stderr io.Writer) error {
	if err := s.applyScript(ctx, stderr); err != nil {
		return err
	}
	doc := s.ws.Document()
	s.log.Info("generated worksheet with %d gaps", s.ws.Gaps().Len())

	if s.opts.Copy {
		if err := export.Copy(doc, s.cfg.Export.WrapWidth); err != nil {
			return err
		}
		s.log.Info("copied worksheet to clipboard")
		if s.opts.Output == "" && !s.opts.set["format"] {
			return nil
		}
	}

	e, err := export.New(s.cfg.Export.Format, s.exportOptions())
	if err != nil {
		return err
	}
	return s.write(e, doc, stdout)
}

// write sends doc to stdout, into a directory under its default name, or
// to the named file.
func (s *session) write(e export.Exporter, doc export.Document, stdout io.Writer) error {
	out := s.opts.Output
	if out == "" || out == "-" {
		if err := e.Export(stdout, doc); err != nil {
			return &export.Error{Format: e.Format(), Path: "stdout", Err: err}
		}
		return nil
	}

	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		path, err := export.Save(out, e, doc)
		if err != nil {
			return err
		}
		s.log.Info("wrote %s", path)
		return nil
	}

	if err := export.WriteFile(out, e, doc); err != nil {
		return err
	}
	s.log.Info("wrote %s", filepath.Clean(out))
	return nil
}

// runInteractive starts the terminal UI, reloading the text on file
// changes with -watch.
func (s *session) runInteractive(ctx context.Context, text string) error {
	theme, err := tui.ThemeFromConfig(s.cfg.UI)
	if err != nil {
		return err
	}
	term, err := s.newBackend()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}

	dir := s.cfg.Export.Dir
	if dir == "" {
		dir = "."
	}
	app := tui.New(term, s.ws,
		tui.WithTheme(theme),
		tui.WithLogger(s.log),
		tui.WithExport(s.cfg.Export.Format, dir, s.exportOptions()),
	)
	defer app.Close()

	if s.opts.Watch {
		w, err := source.Watch(s.opts.Input,
			source.WithEncoding(s.opts.Encoding),
			source.WithInitial(text))
		if err != nil {
			return fmt.Errorf("watch %s: %w", s.opts.Input, err)
		}
		defer w.Close()
		go s.follow(ctx, w)
	}

	err = app.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// follow replaces the worksheet text with each change until ctx ends or
// the watcher closes.
func (s *session) follow(ctx context.Context, w *source.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			s.log.Warn("watch: %v", err)
		case c, ok := <-w.Changes():
			if !ok {
				return
			}
			s.log.Info("%s changed, reloading", c.Path)
			s.ws.SetText(c.Text)
		}
	}
}
