// Package artifact derives the printable parts of a cloze worksheet from a
// token sequence and a gap set.
//
// Generate is a pure function of its inputs apart from the word bank order,
// which is shuffled on every call through an injectable Shuffler. It produces
// three artifacts:
//
//   - Body: the text with every gap replaced by an underscore placeholder,
//     optionally prefixed with the gap number "(n)" and a non-breaking space.
//   - WordBank: one entry per gap, shuffled, as an HTML fragment. Entries
//     holds the same list as plain strings.
//   - Answers: one numbered blank line per gap in creation order, as an HTML
//     fragment. AnswerLines holds the same lines as plain strings.
//
// Gaps are numbered by creation order, not by position in the text.
package artifact
