package effectchain

import (
	"errors"
	"fmt"
)

// Name identifies an effect in the pool.
type Name string

// Effect names. The set is closed; ParseName rejects anything else.
const (
	Chorus     Name = "chorus"
	Multiplier Name = "multiplier"
	Tremolo    Name = "tremolo"
	Distortion Name = "distortion"
	Delay      Name = "delay"
	Reverb     Name = "reverb"
	Compressor Name = "compressor"
	AM         Name = "am"
)

// Endpoint names used by Edges for the global input and output.
const (
	InputName  Name = "input"
	OutputName Name = "output"
)

var names = []Name{Chorus, Multiplier, Tremolo, Distortion, Delay, Reverb, Compressor, AM}

var (
	// ErrUnknownEffect reports a name outside the effect pool.
	ErrUnknownEffect = errors.New("unknown effect")
	// ErrUnknownPreset reports a preset number with no definition.
	ErrUnknownPreset = errors.New("unknown preset")
)

// ConfigurationError describes a rejected chain request.
type ConfigurationError struct {
	Name     string
	Position int
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("effectchain: position %d: %q: %v", e.Position, e.Name, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Names returns every effect name in pool order.
func Names() []Name {
	out := make([]Name, len(names))
	copy(out, names)

	return out
}

// ParseName validates s against the effect pool.
func ParseName(s string) (Name, error) {
	for _, n := range names {
		if string(n) == s {
			return n, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownEffect, s)
}

// ParseNames validates an ordered list, reporting the first bad entry as a
// *ConfigurationError.
func ParseNames(ss []string) ([]Name, error) {
	out := make([]Name, 0, len(ss))

	for i, s := range ss {
		n, err := ParseName(s)
		if err != nil {
			return nil, &ConfigurationError{Name: s, Position: i, Err: ErrUnknownEffect}
		}

		out = append(out, n)
	}

	return out, nil
}
