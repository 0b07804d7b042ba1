package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrUnknownFormat indicates no exporter is registered for a format.
var ErrUnknownFormat = errors.New("unknown export format")

// Error describes a failed export. The worksheet is never modified by a
// failed export.
type Error struct {
	Format string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export %s to %s: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Exporter renders a Document in one format.
type Exporter interface {
	// Format returns the format name ("text", "pdf", ...).
	Format() string
	// Extension returns the file extension without the dot.
	Extension() string
	// Export writes the rendered document to w.
	Export(w io.Writer, doc Document) error
}

// Options configures exporters. Zero values select defaults.
type Options struct {
	// WrapWidth wraps plain text; 0 disables wrapping.
	WrapWidth int
	// Font is the PDF core font family.
	Font string
	// PageSize is the PDF page size.
	PageSize string
}

var registry = map[string]func(Options) Exporter{
	"text": func(o Options) Exporter { return &TextExporter{Width: o.WrapWidth} },
	"pdf":  func(o Options) Exporter { return &PDFExporter{Font: o.Font, PageSize: o.PageSize} },
	"docx": func(Options) Exporter { return &DOCXExporter{} },
	"json": func(Options) Exporter { return &JSONExporter{} },
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New returns the exporter for format.
func New(format string, opts Options) (Exporter, error) {
	ctor, ok := registry[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return ctor(opts), nil
}

// Save writes doc into dir under its default file name and returns the
// path written.
func Save(dir string, e Exporter, doc Document) (string, error) {
	path := filepath.Join(dir, Filename(doc.Title, e.Extension()))
	return path, WriteFile(path, e, doc)
}

// WriteFile renders doc into path atomically: the output goes to a
// temporary file in the same directory which is renamed over path.
func WriteFile(path string, e Exporter, doc Document) error {
	fail := func(err error) error {
		return &Error{Format: e.Format(), Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".clozet-*")
	if err != nil {
		return fail(err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	bw := bufio.NewWriter(tmp)
	if err := e.Export(bw, doc); err != nil {
		cleanup()
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fail(err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fail(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fail(err)
	}
	return nil
}
