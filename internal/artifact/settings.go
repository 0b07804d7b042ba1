package artifact

import (
	"errors"
	"fmt"
)

// DefaultGapLength is the placeholder width used when none is configured.
const DefaultGapLength = 10

// ErrInvalidGapLength indicates a gap length below one character.
var ErrInvalidGapLength = errors.New("gap length must be at least 1")

// Settings controls artifact generation.
type Settings struct {
	// NumberGaps prefixes each placeholder and answer line with "(n)".
	NumberGaps bool
	// IncludeWordBank enables the shuffled word bank.
	IncludeWordBank bool
	// SeparateAnswers enables the answer section.
	SeparateAnswers bool
	// GapLength is the placeholder width in characters for single gaps and
	// the minimum width for range gaps.
	GapLength int
}

// DefaultSettings returns the settings a new worksheet starts with.
func DefaultSettings() Settings {
	return Settings{
		NumberGaps: true,
		GapLength:  DefaultGapLength,
	}
}

// Validate checks the settings.
func (s Settings) Validate() error {
	if s.GapLength < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidGapLength, s.GapLength)
	}
	return nil
}

func (s Settings) gapLength() int {
	if s.GapLength < 1 {
		return 1
	}
	return s.GapLength
}
