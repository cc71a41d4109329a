package modulation

import (
	"errors"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

const (
	nestedLFOFrequency = 0.7
	nestedLFOGain      = 1000
	nestedAMFrequency  = 0.3
	nestedAMDepth      = 1
)

// NestedAM is the second-order modulation path feeding an AM carrier:
// a slow LFO of large amplitude, itself amplitude-modulated, drives the
// target's carrier frequency.
type NestedAM struct {
	LFO *LFO
	AM  *AM
}

// NewNestedAM builds LFO(0.7 Hz, gain 1000) -> AM(0.3 Hz, depth 1) and
// routes the result into target's modulator frequency. The target's signal
// path is not touched.
func NewNestedAM(ctx *graph.Context, target *AM) (*NestedAM, error) {
	if target == nil {
		return nil, errors.New("nested am target must not be nil")
	}

	lfo, err := NewLFO(ctx, nestedLFOFrequency, WithLFOGain(nestedLFOGain))
	if err != nil {
		return nil, err
	}

	am, err := NewAM(ctx, nestedAMFrequency, nestedAMDepth, 0)
	if err != nil {
		return nil, err
	}

	err = ctx.Atomically(func(w *graph.Wiring) error {
		if err := w.Connect(lfo, am); err != nil {
			return err
		}

		return w.Modulate(am, target.Modulator().Frequency())
	})
	if err != nil {
		return nil, err
	}

	return &NestedAM{LFO: lfo, AM: am}, nil
}
