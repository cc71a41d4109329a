package effects

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

const (
	syntheticImpulseSeconds = 1.5
	syntheticImpulseDecay   = 3.0
	syntheticImpulseSeed    = 0x5eed
)

// Reverb is a convolution reverb on the wet path of a mix node.
type Reverb struct {
	*graph.MixNode

	convolver *graph.Convolver
}

// NewReverb creates a reverb with the wet proportion mix. A nil impulse
// selects a synthetic decaying-noise impulse so the effect is always
// usable.
func NewReverb(ctx *graph.Context, mix float64, impulse *graph.Buffer) (*Reverb, error) {
	if impulse == nil {
		var err error
		if impulse, err = SyntheticImpulse(ctx.SampleRate(), syntheticImpulseSeconds, syntheticImpulseDecay); err != nil {
			return nil, err
		}
	}

	node, err := graph.NewMixNode(ctx, mix)
	if err != nil {
		return nil, err
	}

	convolver, err := graph.NewConvolver(ctx, impulse, true)
	if err != nil {
		return nil, err
	}

	if err := graph.Connect(node.Input(), convolver, node.WetMix()); err != nil {
		return nil, err
	}

	return &Reverb{MixNode: node, convolver: convolver}, nil
}

// Convolver returns the convolution unit.
func (r *Reverb) Convolver() *graph.Convolver { return r.convolver }

// SyntheticImpulse builds a deterministic stereo impulse of exponentially
// decaying noise, seconds long, with envelope (1 - t/T)^decay.
func SyntheticImpulse(sampleRate, seconds, decay float64) (*graph.Buffer, error) {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil, fmt.Errorf("impulse length must be > 0 and finite: %f", seconds)
	}

	n := int(sampleRate * seconds)
	if n < 1 {
		return nil, fmt.Errorf("impulse length too short: %d frames", n)
	}

	rng := rand.New(rand.NewPCG(syntheticImpulseSeed, 0))
	channels := [][]float64{make([]float64, n), make([]float64, n)}

	for i := range n {
		env := math.Pow(1-float64(i)/float64(n), decay)
		for _, ch := range channels {
			ch[i] = (rng.Float64()*2 - 1) * env
		}
	}

	return graph.NewBuffer(sampleRate, channels)
}
