package export

import "github.com/atotto/clipboard"

var clipboardWrite = clipboard.WriteAll

// ClipboardSupported reports whether a system clipboard is reachable.
func ClipboardSupported() bool {
	return !clipboard.Unsupported
}

// Copy places the plain-text rendering of doc on the system clipboard.
func Copy(doc Document, width int) error {
	if err := clipboardWrite(PlainText(doc, width)); err != nil {
		return &Error{Format: "clipboard", Err: err}
	}
	return nil
}
