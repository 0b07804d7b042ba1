package export

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/dshills/clozet/internal/artifact"
)

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
		`</Types>`

	docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`

	docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
		`</Relationships>`

	docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>` +
		`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>` +
		`<w:pPr><w:keepNext/><w:spacing w:before="200" w:after="80"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style>` +
		`</w:styles>`

	docxDocumentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docxDocumentClose = `<w:sectPr/></w:body></w:document>`
)

// DOCXExporter renders a WordprocessingML package.
type DOCXExporter struct{}

// Format implements Exporter.
func (*DOCXExporter) Format() string { return "docx" }

// Extension implements Exporter.
func (*DOCXExporter) Extension() string { return "docx" }

// Export implements Exporter.
func (*DOCXExporter) Export(w io.Writer, doc Document) error {
	modified := doc.GeneratedAt
	if modified.IsZero() {
		modified = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles},
		{"word/document.xml", documentXML(doc)},
	}
	for _, p := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return err
		}
		if _, err := io.WriteString(fw, p.body); err != nil {
			return err
		}
	}
	return zw.Close()
}

// documentXML builds word/document.xml: the title as Heading1, one
// paragraph per body line, and Heading2 sections for the word bank and
// answers.
func documentXML(doc Document) string {
	var sb strings.Builder
	sb.WriteString(docxDocumentOpen)

	if strings.TrimSpace(doc.Title) != "" {
		writeParagraph(&sb, "Heading1", doc.Title)
	}
	if strings.TrimSpace(doc.Body) != "" {
		for _, line := range strings.Split(doc.Body, "\n") {
			writeParagraph(&sb, "", line)
		}
	}
	if len(doc.WordBank) > 0 {
		writeParagraph(&sb, "Heading2", artifact.WordBankHeading)
		writeParagraph(&sb, "", strings.Join(doc.WordBank, artifact.EntrySeparator))
	}
	if len(doc.Answers) > 0 {
		writeParagraph(&sb, "Heading2", artifact.AnswersHeading)
		for _, line := range doc.Answers {
			writeParagraph(&sb, "", line)
		}
	}

	sb.WriteString(docxDocumentClose)
	return sb.String()
}

func writeParagraph(sb *strings.Builder, style, text string) {
	sb.WriteString("<w:p>")
	if style != "" {
		sb.WriteString(`<w:pPr><w:pStyle w:val="`)
		sb.WriteString(style)
		sb.WriteString(`"/></w:pPr>`)
	}
	if text != "" {
		sb.WriteString(`<w:r><w:t xml:space="preserve">`)
		_ = xml.EscapeText(sb, []byte(text))
		sb.WriteString("</w:t></w:r>")
	}
	sb.WriteString("</w:p>")
}
