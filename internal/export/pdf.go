package export

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/dshills/clozet/internal/artifact"
)

// Page layout in millimetres.
const (
	pdfMargin       = 20.0
	pdfBodyLine     = 6.0
	pdfTitleLine    = 8.0
	pdfBoxPadding   = 4.0
	pdfFontHeight   = 4.0
	pdfBoxRadius    = 2.0
	pdfAnswerLine   = 10.0
	pdfSectionSpace = 30.0
	pdfLineSpace    = 20.0
)

var pageSizes = map[string]string{
	"a3":     "A3",
	"a4":     "A4",
	"a5":     "A5",
	"letter": "Letter",
	"legal":  "Legal",
}

// ValidPageSize reports whether size names a supported PDF page size.
func ValidPageSize(size string) bool {
	_, ok := pageSizes[strings.ToLower(size)]
	return ok
}

// PDFExporter renders a portrait PDF using a core font.
type PDFExporter struct {
	// Font is a core font family; defaults to Helvetica.
	Font string
	// PageSize defaults to A4.
	PageSize string
}

// Format implements Exporter.
func (*PDFExporter) Format() string { return "pdf" }

// Extension implements Exporter.
func (*PDFExporter) Extension() string { return "pdf" }

// Export implements Exporter.
func (p *PDFExporter) Export(w io.Writer, doc Document) error {
	pdf := p.render(doc)
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func (p *PDFExporter) render(doc Document) *fpdf.Fpdf {
	font := p.Font
	if font == "" {
		font = "Helvetica"
	}
	size, ok := pageSizes[strings.ToLower(p.PageSize)]
	if !ok {
		size = "A4"
	}

	pdf := fpdf.New("P", "mm", size, "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
		pdf.SetModificationDate(doc.GeneratedAt)
	}
	pdf.SetCreator("clozet", true)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	pdf.AddPage()

	l := &pdfLayout{
		pdf:  pdf,
		font: font,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		y:    pdfMargin,
	}
	l.pageW, l.pageH = pdf.GetPageSize()
	l.maxWidth = l.pageW - 2*pdfMargin

	if doc.Title != "" {
		l.title(doc.Title)
	}
	l.body(doc.Body)
	l.wordBank(doc.WordBank)
	l.answers(doc.Answers)
	return pdf
}

type pdfLayout struct {
	pdf      *fpdf.Fpdf
	font     string
	tr       func(string) string
	y        float64
	pageW    float64
	pageH    float64
	maxWidth float64
}

func (l *pdfLayout) setFont(style string, size float64) {
	l.pdf.SetFont(l.font, style, size)
}

// ensure starts a new page when fewer than need millimetres remain.
func (l *pdfLayout) ensure(need float64) {
	if l.y+need > l.pageH-pdfMargin {
		l.pdf.AddPage()
		l.y = pdfMargin
	}
}

// split translates text to the core font encoding and breaks it into
// lines no wider than width. The translated bytes are cp1252, so they are
// measured byte by byte rather than decoded as UTF-8.
func (l *pdfLayout) split(text string, width float64) []string {
	raw := l.pdf.SplitLines([]byte(l.tr(text)), width)
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = string(line)
	}
	return lines
}

// wrapped writes text split to the page width starting at y and returns
// the position below the last line.
func (l *pdfLayout) wrapped(text string, y, width, lineHeight float64) float64 {
	lines := l.split(text, width)
	for i, line := range lines {
		l.pdf.Text(pdfMargin, y+float64(i)*lineHeight, line)
	}
	return y + float64(len(lines))*lineHeight
}

func (l *pdfLayout) title(title string) {
	l.setFont("B", 16)
	l.y = l.wrapped(title, l.y+10, l.maxWidth, pdfTitleLine) + 4
}

func (l *pdfLayout) body(body string) {
	l.setFont("", 12)
	if strings.TrimSpace(body) != "" {
		for _, line := range strings.Split(body, "\n") {
			if strings.TrimSpace(line) == "" {
				l.y += pdfBodyLine
				continue
			}
			l.ensure(pdfLineSpace)
			l.y = l.wrapped(line, l.y, l.maxWidth, pdfBodyLine) + 3
		}
	}
	l.y += 10
}

func (l *pdfLayout) wordBank(entries []string) {
	if len(entries) == 0 {
		return
	}
	l.ensure(pdfSectionSpace)

	l.setFont("B", 14)
	l.pdf.Text(pdfMargin, l.y, artifact.WordBankHeading)
	l.y += 4

	l.setFont("", 12)
	lines := l.split(strings.Join(entries, artifact.EntrySeparator), l.maxWidth-10)
	textHeight := float64(len(lines)-1)*pdfBodyLine + pdfFontHeight
	boxHeight := textHeight + 2*pdfBoxPadding

	l.pdf.RoundedRect(pdfMargin, l.y, l.maxWidth, boxHeight, pdfBoxRadius, "1234", "D")
	startY := l.y + pdfBoxPadding + pdfFontHeight
	for i, line := range lines {
		l.pdf.Text(pdfMargin+pdfBoxPadding, startY+float64(i)*pdfBodyLine, line)
	}
	l.y += boxHeight + 10
}

func (l *pdfLayout) answers(lines []string) {
	if len(lines) == 0 {
		return
	}
	l.ensure(pdfSectionSpace)

	l.setFont("B", 14)
	l.pdf.Text(pdfMargin, l.y, artifact.AnswersHeading)
	l.y += 8

	l.setFont("", 12)
	for _, line := range lines {
		l.ensure(pdfLineSpace)
		l.pdf.Text(pdfMargin, l.y, l.tr(line))
		l.y += pdfAnswerLine
	}
}
