package export

import (
	"strings"
	"time"

	"github.com/dshills/clozet/internal/artifact"
)

// DefaultBaseName is the file name used when a worksheet has no title.
const DefaultBaseName = "cloze-test"

// Document is the serializable form of a worksheet.
type Document struct {
	Title       string
	Body        string
	WordBank    []string
	Answers     []string
	GeneratedAt time.Time
}

// NewDocument snapshots a title and a set of artifacts. Blank word bank
// entries and answer lines are dropped.
func NewDocument(title string, a artifact.Artifacts, at time.Time) Document {
	return Document{
		Title:       strings.TrimSpace(title),
		Body:        a.Body,
		WordBank:    nonBlank(a.Entries),
		Answers:     nonBlank(a.AnswerLines),
		GeneratedAt: at,
	}
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsEmpty reports whether the document has nothing to render.
func (d Document) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Body) == "" &&
		len(d.WordBank) == 0 && len(d.Answers) == 0
}

// Filename returns "<title>.<ext>", or "cloze-test.<ext>" for an untitled
// worksheet. Path separators in the title are replaced with dashes.
func Filename(title, ext string) string {
	base := strings.TrimSpace(title)
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		}
		return r
	}, base)
	if base == "" || base == "." || base == ".." {
		base = DefaultBaseName
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}
