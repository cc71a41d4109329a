package sequencer

import (
	"errors"
	"fmt"
	"slices"
)

// Rest marks an empty step.
const Rest = ' '

// ErrEmptyPattern is returned for a pattern with no steps.
var ErrEmptyPattern = errors.New("sequencer: empty pattern")

// Note is one non-rest step of a pattern.
type Note struct {
	Step    int
	Key     rune
	Pattern int
}

// Pattern is a fixed-length step string. Every character is one step; a
// space is a rest and anything else is a sampler key.
type Pattern struct {
	ID    int
	Steps string

	length int
	notes  []Note
}

// NewPattern parses steps.
func NewPattern(id int, steps string) (Pattern, error) {
	if steps == "" {
		return Pattern{}, fmt.Errorf("%w: id %d", ErrEmptyPattern, id)
	}

	p := Pattern{ID: id, Steps: steps}

	for i, key := range []rune(steps) {
		p.length++

		if key == Rest {
			continue
		}

		p.notes = append(p.notes, Note{Step: i, Key: key, Pattern: id})
	}

	return p, nil
}

// ParsePatterns parses each string, numbering patterns by index.
func ParsePatterns(steps []string) ([]Pattern, error) {
	out := make([]Pattern, 0, len(steps))

	for i, s := range steps {
		p, err := NewPattern(i, s)
		if err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, nil
}

// Len returns the number of steps, rests included.
func (p Pattern) Len() int { return p.length }

// Notes returns the non-rest steps in order.
func (p Pattern) Notes() []Note { return slices.Clone(p.notes) }
