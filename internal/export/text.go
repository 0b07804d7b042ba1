package export

import (
	"io"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/dshills/clozet/internal/artifact"
)

// TextExporter renders the plain-text worksheet.
type TextExporter struct {
	// Width wraps body and word bank lines; 0 disables wrapping.
	Width int
}

// Format implements Exporter.
func (*TextExporter) Format() string { return "text" }

// Extension implements Exporter.
func (*TextExporter) Extension() string { return "txt" }

// Export implements Exporter.
func (t *TextExporter) Export(w io.Writer, doc Document) error {
	_, err := io.WriteString(w, PlainText(doc, t.Width)+"\n")
	return err
}

// PlainText renders the title, body, word bank and answer section as
// plain text, trimmed of surrounding whitespace.
func PlainText(doc Document, width int) string {
	var sb strings.Builder

	if title := strings.TrimSpace(doc.Title); title != "" {
		sb.WriteString(doc.Title)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(doc.Body) != "" {
		sb.WriteString(wrap(doc.Body, width))
		sb.WriteString("\n\n")
	}

	if len(doc.WordBank) > 0 {
		sb.WriteString(artifact.WordBankHeading)
		sb.WriteString("\n")
		sb.WriteString(wrap(strings.Join(doc.WordBank, artifact.EntrySeparator), width))
		sb.WriteString("\n\n")
	}

	if len(doc.Answers) > 0 {
		sb.WriteString(artifact.AnswersHeading)
		sb.WriteString("\n")
		for _, line := range doc.Answers {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
