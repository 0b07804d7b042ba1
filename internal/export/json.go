package export

import (
	"io"
	"time"

	"github.com/tidwall/sjson"
)

// JSONExporter renders the document as a JSON object with the keys
// title, body, word_bank, answers and generated_at.
type JSONExporter struct{}

// Format implements Exporter.
func (*JSONExporter) Format() string { return "json" }

// Extension implements Exporter.
func (*JSONExporter) Extension() string { return "json" }

// Export implements Exporter.
func (*JSONExporter) Export(w io.Writer, doc Document) error {
	out, err := JSON(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

// JSON encodes doc. Empty sections encode as empty arrays.
func JSON(doc Document) ([]byte, error) {
	wordBank := doc.WordBank
	if wordBank == nil {
		wordBank = []string{}
	}
	answers := doc.Answers
	if answers == nil {
		answers = []string{}
	}

	fields := []struct {
		path  string
		value any
	}{
		{"title", doc.Title},
		{"body", doc.Body},
		{"word_bank", wordBank},
		{"answers", answers},
		{"generated_at", doc.GeneratedAt.UTC().Format(time.RFC3339)},
	}

	out := []byte("{}")
	for _, f := range fields {
		var err error
		out, err = sjson.SetBytes(out, f.path, f.value)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
