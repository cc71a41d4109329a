package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

// amMix is the wet proportion of every AM-family effect.
const amMix = 0.4

// AM modulates the amplitude of its input with a sine carrier.
//
// The wet path gain is centerGain + depth*sin(2*pi*f*t): with centerGain 0
// the input swings between -depth and +depth (ring modulation), with
// centerGain 1 it pulses around unity (tremolo).
type AM struct {
	*graph.MixNode

	modulator  *graph.Oscillator
	depth      *graph.Gain
	signalGain *graph.Gain
}

// NewAM creates an AM effect with carrier frequency Hz, modulation depth
// and center gain.
func NewAM(ctx *graph.Context, frequency, depth, centerGain float64) (*AM, error) {
	if math.IsNaN(depth) || math.IsInf(depth, 0) {
		return nil, fmt.Errorf("am depth must be finite: %f", depth)
	}

	if math.IsNaN(centerGain) || math.IsInf(centerGain, 0) {
		return nil, fmt.Errorf("am center gain must be finite: %f", centerGain)
	}

	mix, err := graph.NewMixNode(ctx, amMix)
	if err != nil {
		return nil, err
	}

	osc, err := graph.NewOscillator(ctx, frequency)
	if err != nil {
		return nil, err
	}

	depthGain, err := graph.NewGain(ctx, depth)
	if err != nil {
		return nil, err
	}

	signalGain, err := graph.NewGain(ctx, centerGain)
	if err != nil {
		return nil, err
	}

	err = ctx.Atomically(func(w *graph.Wiring) error {
		if err := w.Connect(osc, depthGain); err != nil {
			return err
		}

		if err := w.Modulate(depthGain, signalGain.Gain()); err != nil {
			return err
		}

		return w.Connect(mix.Input(), signalGain, mix.WetMix())
	})
	if err != nil {
		return nil, err
	}

	if err := osc.Start(ctx.CurrentTime()); err != nil {
		return nil, err
	}

	return &AM{MixNode: mix, modulator: osc, depth: depthGain, signalGain: signalGain}, nil
}

// NewTremolo creates an AM effect centered on unity gain.
func NewTremolo(ctx *graph.Context, frequency, depth float64) (*AM, error) {
	return NewAM(ctx, frequency, depth, 1)
}

// Modulator returns the carrier oscillator. Its Frequency param is the
// modulation target of NestedAM.
func (a *AM) Modulator() *graph.Oscillator { return a.modulator }

// Depth returns the carrier depth gain.
func (a *AM) Depth() *graph.Gain { return a.depth }

// SignalGain returns the modulated gain on the wet path.
func (a *AM) SignalGain() *graph.Gain { return a.signalGain }
