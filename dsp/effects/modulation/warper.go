package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

const (
	warperMaxDelaySeconds = 2.0
	warperBaseDelay       = 0.001
)

// Warper sweeps a short delay with an LFO. amount is the sweep depth in
// milliseconds; the LFO output scaled by amount/1000 is added to the base
// delay time.
type Warper struct {
	*graph.Composite

	lfo   *LFO
	depth *graph.Gain
	delay *graph.Delay
}

// NewWarper creates a warper whose LFO runs at lfoFrequency Hz with the
// fundamental coefficients (re, im).
func NewWarper(ctx *graph.Context, lfoFrequency, amount, re, im float64) (*Warper, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("warper amount must be finite: %f", amount)
	}

	shell, err := graph.NewComposite(ctx)
	if err != nil {
		return nil, err
	}

	lfo, err := NewLFO(ctx, lfoFrequency, WithLFOPhase(re, im))
	if err != nil {
		return nil, err
	}

	depth, err := graph.NewGain(ctx, amount/1000)
	if err != nil {
		return nil, err
	}

	delay, err := graph.NewDelay(ctx, warperMaxDelaySeconds, warperBaseDelay)
	if err != nil {
		return nil, err
	}

	err = ctx.Atomically(func(w *graph.Wiring) error {
		if err := w.Connect(lfo, depth); err != nil {
			return err
		}

		if err := w.Modulate(depth, delay.DelayTime()); err != nil {
			return err
		}

		return w.Connect(shell.Input(), delay, shell.Output())
	})
	if err != nil {
		return nil, err
	}

	return &Warper{Composite: shell, lfo: lfo, depth: depth, delay: delay}, nil
}

// LFO returns the sweep oscillator.
func (w *Warper) LFO() *LFO { return w.lfo }

// Delay returns the swept delay unit.
func (w *Warper) Delay() *graph.Delay { return w.delay }
