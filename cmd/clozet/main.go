// Package main is the entry point for clozet, a cloze worksheet builder.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/clozet/internal/config"
	"github.com/dshills/clozet/internal/config/loader"
	"github.com/dshills/clozet/internal/export"
	"github.com/dshills/clozet/internal/logging"
	"github.com/dshills/clozet/internal/source"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errHelp signals that usage or version output was requested.
var errHelp = errors.New("help requested")

// options holds the parsed command line.
type options struct {
	ConfigPath     string
	Title          string
	KeepFormatting bool
	RangeMode      bool
	Script         string
	Format         string
	Output         string
	Copy           bool
	Encoding       string
	Watch          bool
	LogLevel       string
	LogFile        string
	Seed           uint64
	Input          string

	// set records which flags were given explicitly.
	set map[string]bool
}

// batch reports whether the run produces output without the terminal UI.
func (o *options) batch() bool {
	return o.Script != "" || o.set["format"] || o.Output != "" || o.Copy
}

// overrides maps explicitly set flags to configuration paths.
func (o *options) overrides() map[string]any {
	m := make(map[string]any)
	if o.set["title"] {
		m["worksheet.title"] = o.Title
	}
	if o.set["keep-formatting"] {
		m["worksheet.keep_formatting"] = o.KeepFormatting
	}
	if o.set["range"] {
		m["selection.range_mode"] = o.RangeMode
	}
	if o.set["format"] {
		m["export.format"] = strings.ToLower(o.Format)
	}
	if o.set["log-level"] {
		m["logging.level"] = o.LogLevel
	}
	if o.set["log-file"] {
		m["logging.file"] = o.LogFile
	}
	return m
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if errors.Is(err, errHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(config.Options{
		Path:      opts.ConfigPath,
		Env:       loader.NewEnvLoader(loader.EnvPrefix),
		Overrides: opts.overrides(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log, closeLog, err := newLogger(cfg, !opts.batch(), stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	text, err := readInput(opts, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to read input: %v\n", err)
		return 1
	}

	s := newSession(cfg, opts, log)
	defer s.Close()
	s.ws.SetText(text)

	if opts.batch() {
		err = s.runBatch(ctx, stdout, stderr)
	} else {
		err = s.runInteractive(ctx, text)
	}
	if err != nil {
		log.Error("%v", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stdout, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}
	var showVersion bool
	var showHelp bool

	fs := flag.NewFlagSet("clozet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.Title, "title", "", "Worksheet title")
	fs.BoolVar(&opts.KeepFormatting, "keep-formatting", false, "Preserve line breaks in the input")
	fs.BoolVar(&opts.RangeMode, "range", false, "Start in range selection mode")
	fs.StringVar(&opts.Script, "script", "", "Selection script (.yaml, .yml or .lua); implies batch mode")
	fs.StringVar(&opts.Format, "format", "", "Output format: "+strings.Join(export.Formats(), ", "))
	fs.StringVar(&opts.Output, "o", "", "Output file or directory (default stdout)")
	fs.BoolVar(&opts.Copy, "copy", false, "Copy the plain-text worksheet to the clipboard")
	fs.StringVar(&opts.Encoding, "encoding", source.Auto, "Input charset (auto, utf-8, windows-1252, ...)")
	fs.BoolVar(&opts.Watch, "watch", false, "Reload when the input file changes")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	fs.Uint64Var(&opts.Seed, "seed", 0, "Seed for the word bank order (0 = random)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "clozet - build cloze (gap-fill) worksheets\n\n")
		fmt.Fprintf(out, "Usage: clozet [options] [file]\n\n")
		fmt.Fprintf(out, "Reads the text from file, or from stdin when no file is given.\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  clozet story.txt                          Select gaps interactively\n")
		fmt.Fprintf(out, "  clozet -script gaps.yaml -format pdf -o . story.txt\n")
		fmt.Fprintf(out, "  clozet -script gaps.lua -copy story.txt   Copy the worksheet\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errHelp
		}
		return nil, err
	}

	if showHelp {
		fs.SetOutput(stdout)
		fs.Usage()
		return nil, errHelp
	}
	if showVersion {
		fmt.Fprintf(stdout, "clozet %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return nil, errHelp
	}

	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if name == "c" {
			name = "config"
		}
		opts.set[name] = true
	})

	if opts.set["log-level"] && !logging.ValidLevel(opts.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.Input = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	if opts.Watch && (opts.Input == "" || opts.Input == "-") {
		return nil, errors.New("-watch needs an input file")
	}
	return opts, nil
}

// newLogger builds the logger described by cfg. The interactive UI owns
// the terminal, so without a log file it logs nowhere.
func newLogger(cfg *config.Config, interactive bool, stderr io.Writer) (*logging.Logger, func(), error) {
	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		log := logging.New(logging.Config{Level: level, Output: f, Prefix: "clozet"})
		return log, func() { _ = f.Close() }, nil
	}
	if interactive {
		return logging.Nop(), func() {}, nil
	}
	return logging.New(logging.Config{Level: level, Output: stderr, Prefix: "clozet"}), func() {}, nil
}

func readInput(opts *options, stdin io.Reader) (string, error) {
	if opts.Input != "" && opts.Input != "-" {
		return source.ReadFile(opts.Input, opts.Encoding)
	}
	if f, ok := stdin.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			// Interactive terminal with nothing piped in.
			return "", nil
		}
	}
	return source.ReadAll(stdin, opts.Encoding)
}
