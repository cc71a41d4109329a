package modulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

const (
	defaultLFOGain = 1.0
	defaultLFOReal = 1.0
	defaultLFOImag = 0.0
)

// LFOOption mutates LFO construction parameters.
type LFOOption func(*lfoConfig) error

type lfoConfig struct {
	gain float64
	re   float64
	im   float64
}

// WithLFOGain sets the output scale.
func WithLFOGain(gain float64) LFOOption {
	return func(cfg *lfoConfig) error {
		if math.IsNaN(gain) || math.IsInf(gain, 0) {
			return fmt.Errorf("lfo gain must be finite: %f", gain)
		}

		cfg.gain = gain

		return nil
	}
}

// WithLFOPhase sets the fundamental's cosine and sine coefficients, which
// select the starting phase of the wave. They must not both be zero.
func WithLFOPhase(re, im float64) LFOOption {
	return func(cfg *lfoConfig) error {
		if math.IsNaN(re) || math.IsNaN(im) || math.IsInf(re, 0) || math.IsInf(im, 0) {
			return fmt.Errorf("lfo coefficients must be finite: %f, %f", re, im)
		}

		if re == 0 && im == 0 {
			return errors.New("lfo coefficients must not both be zero")
		}

		cfg.re = re
		cfg.im = im

		return nil
	}
}

// LFO is a free-running periodic-wave oscillator followed by a gain. It
// starts as soon as it is created; its input port is unused.
type LFO struct {
	*graph.Composite

	osc  *graph.Oscillator
	gain *graph.Gain
}

// NewLFO creates and starts an LFO at frequency Hz.
func NewLFO(ctx *graph.Context, frequency float64, opts ...LFOOption) (*LFO, error) {
	cfg := lfoConfig{gain: defaultLFOGain, re: defaultLFOReal, im: defaultLFOImag}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	shell, err := graph.NewComposite(ctx)
	if err != nil {
		return nil, err
	}

	osc, err := graph.NewOscillator(ctx, frequency)
	if err != nil {
		return nil, err
	}

	wave, err := graph.NewPeriodicWave([]float64{cfg.re}, []float64{cfg.im})
	if err != nil {
		return nil, err
	}

	if err := osc.SetPeriodicWave(wave); err != nil {
		return nil, err
	}

	gain, err := graph.NewGain(ctx, cfg.gain)
	if err != nil {
		return nil, err
	}

	if err := graph.Connect(osc, gain, shell.Output()); err != nil {
		return nil, err
	}

	if err := osc.Start(ctx.CurrentTime()); err != nil {
		return nil, err
	}

	return &LFO{Composite: shell, osc: osc, gain: gain}, nil
}

// Oscillator returns the underlying oscillator.
func (l *LFO) Oscillator() *graph.Oscillator { return l.osc }

// Gain returns the output scale gain.
func (l *LFO) Gain() *graph.Gain { return l.gain }
