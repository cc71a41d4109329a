package modulation

import "github.com/cwbudde/algo-menagerie/dsp/graph"

const chorusInputGain = 0.5

// warperPhases are the (cos, sin) coefficients of the three chorus voices.
var warperPhases = [3][2]float64{{-1, 1}, {1, 1}, {1, -1}}

// StereoChorus is a three-voice chorus. The left input feeds voices 1 and
// 2, the right input feeds voices 2 and 3; voices 1 and 2 sum to the left
// output and voices 2 and 3 to the right. The shared middle voice
// cross-feeds the channels.
type StereoChorus struct {
	*graph.Composite

	splitter *Splitter
	warpers  [3]*Warper
}

// NewStereoChorus creates a chorus with the given LFO rate in Hz and sweep
// depth in milliseconds.
func NewStereoChorus(ctx *graph.Context, lfoFrequency, amount float64) (*StereoChorus, error) {
	shell, err := graph.NewComposite(ctx)
	if err != nil {
		return nil, err
	}

	splitter, err := NewSplitter(ctx)
	if err != nil {
		return nil, err
	}

	gain, err := graph.NewGain(ctx, chorusInputGain)
	if err != nil {
		return nil, err
	}

	c := &StereoChorus{Composite: shell, splitter: splitter}

	for i, ph := range warperPhases {
		if c.warpers[i], err = NewWarper(ctx, lfoFrequency, amount, ph[0], ph[1]); err != nil {
			return nil, err
		}
	}

	w1, w2, w3 := c.warpers[0], c.warpers[1], c.warpers[2]

	err = ctx.Atomically(func(w *graph.Wiring) error {
		routes := [][2]graph.Node{
			{splitter.InputL, w1},
			{splitter.InputL, w2},
			{splitter.InputR, w2},
			{splitter.InputR, w3},
			{w1, splitter.OutputL},
			{w2, splitter.OutputL},
			{w2, splitter.OutputR},
			{w3, splitter.OutputR},
		}

		for _, r := range routes {
			if err := w.Connect(r[0], r[1]); err != nil {
				return err
			}
		}

		return w.Connect(shell.Input(), gain, splitter, shell.Output())
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Warpers returns the three voices in order.
func (c *StereoChorus) Warpers() [3]*Warper { return c.warpers }

// Splitter returns the stereo splitter.
func (c *StereoChorus) Splitter() *Splitter { return c.splitter }
