package effectchain

import (
	"fmt"
	"slices"
)

var presets = [][]Name{
	{Chorus, Multiplier, Tremolo},
	{Chorus, Multiplier, Tremolo, Distortion, Delay, Reverb, Compressor},
	{Reverb, AM, Multiplier, Chorus, Tremolo, Compressor, Delay, Distortion},
}

// NumPresets reports how many presets Preset accepts.
func NumPresets() int { return len(presets) }

// Preset returns the chain for preset number i, counting from 1.
func Preset(i int) ([]Name, error) {
	if i < 1 || i > len(presets) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPreset, i)
	}

	return slices.Clone(presets[i-1]), nil
}

// ApplyPreset connects preset number i.
func (c *Chain) ApplyPreset(i int) error {
	chain, err := Preset(i)
	if err != nil {
		return err
	}

	return c.ConnectNodes(chain)
}
