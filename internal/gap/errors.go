package gap

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex indicates a token index outside the current token
// sequence. It signals a wiring bug in the caller, never user input.
var ErrInvalidIndex = errors.New("invalid token index")

// IndexError reports the offending index and the sequence length.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("token index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrInvalidIndex
}
