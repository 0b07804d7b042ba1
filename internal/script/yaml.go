package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is a declarative selection script.
//
//	title: Photosynthesis
//	text: |
//	  Plants use light to make sugar.
//	keep_formatting: false
//	settings:
//	  word_bank: true
//	  gap_length: 12
//	steps:
//	  - word: light
//	  - phrase: make sugar
//	  - single: 0
//	  - range: [2, 4]
//	  - click: 6
//	    shift: true
//	  - clear: true
type File struct {
	Title          *string   `yaml:"title"`
	Text           *string   `yaml:"text"`
	KeepFormatting *bool     `yaml:"keep_formatting"`
	RangeMode      *bool     `yaml:"range_mode"`
	Settings       *Settings `yaml:"settings"`
	Steps          []Step    `yaml:"steps"`
}

// Settings overrides artifact settings; unset fields keep their value.
type Settings struct {
	NumberGaps *bool `yaml:"number_gaps"`
	WordBank   *bool `yaml:"word_bank"`
	Answers    *bool `yaml:"answers"`
	GapLength  *int  `yaml:"gap_length"`
}

// Step is one selection action. Exactly one of Single, Range, Click, Word,
// Phrase or Clear must be set.
type Step struct {
	Single     *int   `yaml:"single"`
	Range      []int  `yaml:"range"`
	Click      *int   `yaml:"click"`
	Shift      bool   `yaml:"shift"`
	Word       string `yaml:"word"`
	Phrase     string `yaml:"phrase"`
	Occurrence int    `yaml:"occurrence"`
	Clear      bool   `yaml:"clear"`
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{s.Single != nil, s.Range != nil, s.Click != nil, s.Word != "", s.Phrase != "", s.Clear} {
		if set {
			n++
		}
	}
	return n
}

// LoadYAML reads and parses a YAML script.
func LoadYAML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseYAML(data)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			se.Source = path
			return nil, se
		}
		return nil, &Error{Source: path, Err: err}
	}
	return f, nil
}

// ParseYAML parses a YAML script and validates its steps. Unknown keys are
// rejected.
func ParseYAML(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Source: "<yaml>", Err: err}
	}

	for i, step := range f.Steps {
		if n := step.actions(); n != 1 {
			return nil, &Error{Source: "<yaml>", Step: i + 1, Err: fmt.Errorf("%w: %d actions", ErrInvalidStep, n)}
		}
		if step.Range != nil && len(step.Range) != 2 {
			return nil, &Error{Source: "<yaml>", Step: i + 1, Err: fmt.Errorf("%w: range needs two indices", ErrInvalidStep)}
		}
	}
	return &f, nil
}

// Apply runs the script against t: text, formatting, title, mode and
// settings first, then every step in order. It stops at the first failing
// step.
func (f *File) Apply(t Target) error {
	fail := func(step int, err error) error {
		return &Error{Source: "<yaml>", Step: step, Err: err}
	}

	if f.KeepFormatting != nil {
		t.SetKeepFormatting(*f.KeepFormatting)
	}
	if f.Text != nil {
		t.SetText(*f.Text)
	}
	if f.Title != nil {
		t.SetTitle(*f.Title)
	}
	if f.RangeMode != nil {
		t.SetRangeMode(*f.RangeMode)
	}
	if f.Settings != nil {
		s := t.Settings()
		if f.Settings.NumberGaps != nil {
			s.NumberGaps = *f.Settings.NumberGaps
		}
		if f.Settings.WordBank != nil {
			s.IncludeWordBank = *f.Settings.WordBank
		}
		if f.Settings.Answers != nil {
			s.SeparateAnswers = *f.Settings.Answers
		}
		if f.Settings.GapLength != nil {
			s.GapLength = *f.Settings.GapLength
		}
		if err := t.SetSettings(s); err != nil {
			return fail(0, err)
		}
	}

	for i, step := range f.Steps {
		if err := step.apply(t); err != nil {
			return fail(i+1, err)
		}
	}
	return nil
}

func (s Step) apply(t Target) error {
	var err error
	switch {
	case s.Single != nil:
		_, err = t.ToggleSingle(*s.Single)
	case s.Range != nil:
		_, err = t.ToggleRange(s.Range[0], s.Range[1])
	case s.Click != nil:
		_, err = t.Click(*s.Click, s.Shift)
	case s.Word != "":
		i, ok := FindWord(t.Tokens(), s.Word, s.Occurrence)
		if !ok {
			return fmt.Errorf("word %q: %w", s.Word, ErrNotFound)
		}
		_, err = t.ToggleSingle(i)
	case s.Phrase != "":
		start, end, ok := FindPhrase(t.Tokens(), s.Phrase, s.Occurrence)
		if !ok {
			return fmt.Errorf("phrase %q: %w", s.Phrase, ErrNotFound)
		}
		_, err = t.ToggleRange(start, end)
	case s.Clear:
		t.Clear()
	}
	return err
}
