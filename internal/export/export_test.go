package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/clozet/internal/artifact"
)

func sampleDocument() Document {
	return Document{
		Title:       "Weather",
		Body:        "The (1)\u00a0__________ is bright.\nRain (2)\u00a0__________ soon.",
		WordBank:    []string{"sun", "falls"},
		Answers:     []string{"(1) ____________________________", "(2) ____________________________"},
		GeneratedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
}

func TestNewDocument(t *testing.T) {
	a := artifact.Artifacts{
		Body:        "x",
		Entries:     []string{"a", " ", "b"},
		AnswerLines: []string{"(1) ___"},
	}
	doc := NewDocument("  Title  ", a, time.Time{})

	if doc.Title != "Title" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(doc.WordBank) != 2 || doc.WordBank[1] != "b" {
		t.Errorf("WordBank = %q", doc.WordBank)
	}
	if doc.IsEmpty() {
		t.Error("IsEmpty() = true")
	}
	if !(Document{}).IsEmpty() {
		t.Error("zero Document not empty")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"Weather", "pdf", "Weather.pdf"},
		{"", "docx", "cloze-test.docx"},
		{"   ", ".txt", "cloze-test.txt"},
		{"a/b\\c", "json", "a-b-c.json"},
		{"..", "pdf", "cloze-test.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title, tt.ext); got != tt.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", tt.title, tt.ext, got, tt.want)
		}
	}
}

func TestPlainText(t *testing.T) {
	want := "Weather\n" +
		"The (1)\u00a0__________ is bright.\nRain (2)\u00a0__________ soon.\n\n" +
		"Word Bank\nsun / falls\n\n" +
		"Answer Section\n(1) ____________________________\n(2) ____________________________"

	if got := PlainText(sampleDocument(), 0); got != want {
		t.Errorf("PlainText() =\n%q\nwant\n%q", got, want)
	}
}

func TestPlainText_Sections(t *testing.T) {
	doc := Document{Body: "Only body."}
	if got := PlainText(doc, 0); got != "Only body." {
		t.Errorf("body only = %q", got)
	}

	doc = Document{Title: "T", WordBank: []string{"x"}}
	if got := PlainText(doc, 0); got != "T\nWord Bank\nx" {
		t.Errorf("title and bank = %q", got)
	}

	if got := PlainText(Document{}, 0); got != "" {
		t.Errorf("empty = %q", got)
	}
}

func TestPlainText_Wrap(t *testing.T) {
	doc := Document{Body: "one two three four five six"}
	got := PlainText(doc, 10)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 10 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.ReplaceAll(got, "\n", " ") != doc.Body {
		t.Errorf("wrapped text lost words: %q", got)
	}
}

func TestNew(t *testing.T) {
	for _, format := range Formats() {
		e, err := New(format, Options{})
		if err != nil {
			t.Fatalf("New(%q): %v", format, err)
		}
		if e.Format() != format {
			t.Errorf("New(%q).Format() = %q", format, e.Format())
		}
	}

	if _, err := New("rtf", Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("New(rtf) = %v, want ErrUnknownFormat", err)
	}
	if got := strings.Join(Formats(), ","); got != "docx,json,pdf,text" {
		t.Errorf("Formats() = %s", got)
	}
}

func TestJSON(t *testing.T) {
	out, err := JSON(sampleDocument())
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !gjson.ValidBytes(out) {
		t.Fatalf("invalid JSON: %s", out)
	}

	r := gjson.ParseBytes(out)
	if r.Get("title").String() != "Weather" {
		t.Errorf("title = %s", r.Get("title"))
	}
	if r.Get("word_bank.#").Int() != 2 || r.Get("word_bank.1").String() != "falls" {
		t.Errorf("word_bank = %s", r.Get("word_bank"))
	}
	if r.Get("answers.#").Int() != 2 {
		t.Errorf("answers = %s", r.Get("answers"))
	}
	if r.Get("generated_at").String() != "2026-03-04T05:06:07Z" {
		t.Errorf("generated_at = %s", r.Get("generated_at"))
	}
	if !strings.Contains(r.Get("body").String(), "\u00a0") {
		t.Error("body lost non-breaking space")
	}

	empty, _ := JSON(Document{})
	if gjson.GetBytes(empty, "word_bank").Raw != "[]" {
		t.Errorf("empty word_bank = %s", gjson.GetBytes(empty, "word_bank").Raw)
	}
}

func TestDOCX(t *testing.T) {
	var buf bytes.Buffer
	if err := (&DOCXExporter{}).Export(&buf, sampleDocument()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}

	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		parts[f.Name] = string(data)
	}

	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		if _, ok := parts[name]; !ok {
			t.Errorf("missing part %s", name)
		}
	}

	doc := parts["word/document.xml"]
	wants := []string{
		`<w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t xml:space="preserve">Weather</w:t>`,
		`<w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t xml:space="preserve">Word Bank</w:t>`,
		`sun / falls`,
		`Answer Section`,
		"Rain (2)\u00a0",
	}
	for _, w := range wants {
		if !strings.Contains(doc, w) {
			t.Errorf("document.xml missing %q", w)
		}
	}
}

func TestDOCX_Escaping(t *testing.T) {
	got := documentXML(Document{Body: "a < b & c"})
	if !strings.Contains(got, "a &lt; b &amp; c") {
		t.Errorf("document.xml = %s", got)
	}
}

func TestPDF(t *testing.T) {
	doc := sampleDocument()
	for i := 0; i < 80; i++ {
		doc.Body += "\nLine of filler text to force a second page."
	}

	e := &PDFExporter{PageSize: "letter"}
	var buf bytes.Buffer
	if err := e.Export(&buf, doc); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header")
	}
	if n := e.render(doc).PageCount(); n < 2 {
		t.Errorf("PageCount() = %d, want the long body on several pages", n)
	}
	if n := e.render(sampleDocument()).PageCount(); n != 1 {
		t.Errorf("short document PageCount() = %d, want 1", n)
	}

	if !ValidPageSize("A4") || ValidPageSize("B7") {
		t.Error("ValidPageSize mismatch")
	}
}

func TestPDF_NonASCII(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"numbered gap", Document{Body: "The quick (1)\u00a0__________"}},
		{"accented body", Document{Title: "Caf\u00e9", Body: "caf\u00e9 au lait"}},
		{"accented word bank", Document{
			Body:     "(1)\u00a0__________ au lait",
			WordBank: []string{"caf\u00e9", "cr\u00e8me br\u00fbl\u00e9e"},
			Answers:  []string{"(1) ____________________________"},
		}},
		{"long wrapped line", Document{Body: strings.Repeat("na\u00efve (2)\u00a0__________ ", 30)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&PDFExporter{}).Export(&buf, tt.doc); err != nil {
				t.Fatalf("Export: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Error("output does not start with a PDF header")
			}
		})
	}
}

type failingExporter struct{}

func (failingExporter) Format() string    { return "fail" }
func (failingExporter) Extension() string { return "bin" }
func (failingExporter) Export(w io.Writer, doc Document) error {
	_, _ = io.WriteString(w, "partial")
	return errors.New("disk on fire")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, &TextExporter{}, sampleDocument())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "Weather.txt" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "Weather\n") {
		t.Errorf("content = %q", data)
	}
}

func TestWriteFile_Failure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(path, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := WriteFile(path, failingExporter{}, sampleDocument())
	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ee.Format != "fail" || ee.Path != path {
		t.Errorf("Error = %+v", ee)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "previous" {
		t.Errorf("existing file modified: %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}
}

func TestCopy(t *testing.T) {
	var got string
	orig := clipboardWrite
	defer func() { clipboardWrite = orig }()

	clipboardWrite = func(s string) error {
		got = s
		return nil
	}
	if err := Copy(sampleDocument(), 0); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if got != PlainText(sampleDocument(), 0) {
		t.Errorf("clipboard = %q", got)
	}

	clipboardWrite = func(string) error { return errors.New("no clipboard") }
	var ee *Error
	if err := Copy(sampleDocument(), 0); !errors.As(err, &ee) || ee.Format != "clipboard" {
		t.Errorf("Copy error = %v", err)
	}
}
