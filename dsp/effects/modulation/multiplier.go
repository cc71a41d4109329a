package modulation

import "github.com/cwbudde/algo-menagerie/dsp/graph"

// Multiplier multiplies its input by itself on the wet path, mixed in at
// mix. The result is a full-wave, octave-up distortion of the input.
type Multiplier struct {
	*graph.MixNode

	modulatorGain *graph.Gain
	signalGain    *graph.Gain
}

// NewMultiplier creates a multiplier with the wet proportion mix.
func NewMultiplier(ctx *graph.Context, mix float64) (*Multiplier, error) {
	node, err := graph.NewMixNode(ctx, mix)
	if err != nil {
		return nil, err
	}

	modulatorGain, err := graph.NewGain(ctx, 1)
	if err != nil {
		return nil, err
	}

	signalGain, err := graph.NewGain(ctx, 0)
	if err != nil {
		return nil, err
	}

	err = ctx.Atomically(func(w *graph.Wiring) error {
		if err := w.Connect(node.Input(), modulatorGain); err != nil {
			return err
		}

		if err := w.Modulate(modulatorGain, signalGain.Gain()); err != nil {
			return err
		}

		return w.Connect(node.Input(), signalGain, node.WetMix())
	})
	if err != nil {
		return nil, err
	}

	return &Multiplier{MixNode: node, modulatorGain: modulatorGain, signalGain: signalGain}, nil
}
