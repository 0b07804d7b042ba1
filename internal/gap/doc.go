// Package gap owns the set of gapped tokens of a worksheet.
//
// A Gap is either a single-token gap or a range gap spanning a contiguous
// run of tokens that renders as one blank. Gaps never share a token. The Set
// keeps gaps in creation order, which is also their numbering order.
//
// Selection Model:
//
// Selector is the only writer of a Set. It exposes two toggles:
//
//   - ToggleSingle(i): removes the gap covering i (a click anywhere inside a
//     range removes the whole range), otherwise gaps the word at i.
//   - ToggleRange(a, b): removes the range when [a, b] lies entirely inside
//     one existing range, otherwise removes every gap overlapping [a, b] and
//     creates a fresh range. Overlapping selections are never merged or
//     truncated; the newest selection wins.
//
// Click layers the interactive anchor on top: with shift held, or with range
// mode enabled, a click after an earlier click toggles the range between the
// two. In range mode the anchor is dropped after each range toggle so every
// pair of clicks defines a fresh range; with shift the anchor follows the
// most recent click.
//
// Range endpoints are trimmed to the outermost word tokens inside the
// requested span, so a range always starts and ends on a word.
//
// Thread Safety:
//
// Gap and Delta are immutable value types. Selector and Set are not safe for
// concurrent use; a worksheet mutates them from a single goroutine.
package gap
