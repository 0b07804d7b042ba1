// Package export serializes a finished worksheet.
//
// A Document is an immutable snapshot of the title and generated
// artifacts. Exporters render it as plain text, PDF, DOCX or JSON; the
// plain-text rendering also backs the clipboard copy. Files are written
// atomically so a failed export never leaves a truncated file behind.
package export
