// Package token splits worksheet text into an addressable token sequence.
//
// Tokenization is lossless: whitespace runs, the punctuation marks
// '.', '!', '?' and ',' and line breaks are kept as tokens of their own, so
// concatenating the text of every token reproduces the normalized input
// exactly:
//
//	tokens := token.Tokenize("The quick fox.", false)
//	// "The" " " "quick" " " "fox" "."
//	token.Join(tokens) == "The quick fox." // true
//
// Indices are dense (0..n-1) and stable for the lifetime of one
// tokenization. Every call to Tokenize produces a new address space; any
// index obtained from an earlier call must be discarded along with the gaps
// that refer to it.
package token
