// Package source reads worksheet input text and watches it for changes.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding indicates the requested charset has no decoder.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Auto selects encoding detection.
const Auto = "auto"

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadFile reads path and decodes it to UTF-8. encodingName is a WHATWG
// label such as "windows-1252" or "shift_jis"; "" or "auto" detects.
func ReadFile(path, encodingName string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := Decode(data, encodingName)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// ReadAll reads r to EOF and decodes it like ReadFile.
func ReadAll(r io.Reader, encodingName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return Decode(data, encodingName)
}

// Decode converts data to UTF-8.
//
// A byte order mark always wins. Without one, an explicit encoding is
// used as given. Otherwise valid UTF-8 is returned unchanged and anything
// else is decoded as windows-1252.
func Decode(data []byte, encodingName string) (string, error) {
	if enc, n := detectBOM(data); enc != nil || n > 0 {
		if enc == nil {
			return string(data[n:]), nil
		}
		return decodeWith(enc, data)
	}

	name := strings.TrimSpace(strings.ToLower(encodingName))
	if name != "" && name != Auto {
		enc, err := Lookup(name)
		if err != nil {
			return "", err
		}
		return decodeWith(enc, data)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	return decodeWith(charmap.Windows1252, data)
}

// Detect names the encoding Decode would use for data without an explicit
// encoding.
func Detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return "utf-8"
	case bytes.HasPrefix(data, bomUTF16LE):
		return "utf-16le"
	case bytes.HasPrefix(data, bomUTF16BE):
		return "utf-16be"
	case utf8.Valid(data):
		return "utf-8"
	default:
		return "windows-1252"
	}
}

// Lookup returns the decoder for a WHATWG encoding label.
func Lookup(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// detectBOM returns the decoder selected by a byte order mark. A UTF-8 BOM
// returns a nil encoding and the number of bytes to skip.
func detectBOM(data []byte) (encoding.Encoding, int) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return nil, len(bomUTF8)
	case bytes.HasPrefix(data, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), 0
	case bytes.HasPrefix(data, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), 0
	}
	return nil, 0
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding input: %w", err)
	}
	return string(out), nil
}
