package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/core"
	"github.com/cwbudde/algo-menagerie/dsp/interp"
)

// Waveform selects an oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
	WaveCustom
)

const waveTableSize = 2048

// PeriodicWave is a single-cycle wave built from Fourier coefficients.
// Coefficient k describes harmonic k+1: real terms are cosines, imaginary
// terms are sines. The table is normalized to unit peak.
type PeriodicWave struct {
	table []float64
}

// NewPeriodicWave builds a wave from matching real and imaginary
// coefficient slices.
func NewPeriodicWave(re, im []float64) (*PeriodicWave, error) {
	if len(re) != len(im) {
		return nil, fmt.Errorf("%w: coefficient lengths differ: %d != %d", ErrInvalidArgument, len(re), len(im))
	}

	if len(re) == 0 {
		return nil, fmt.Errorf("%w: no coefficients", ErrInvalidArgument)
	}

	table := make([]float64, waveTableSize+1)
	peak := 0.0

	for i := range waveTableSize {
		phase := 2 * math.Pi * float64(i) / waveTableSize

		v := 0.0
		for k := range re {
			h := float64(k + 1)
			v += re[k]*math.Cos(h*phase) + im[k]*math.Sin(h*phase)
		}

		table[i] = v
		peak = max(peak, math.Abs(v))
	}

	if peak > 0 {
		for i := range table {
			table[i] /= peak
		}
	}

	table[waveTableSize] = table[0]

	return &PeriodicWave{table: table}, nil
}

// At returns the wave value at phase in cycles [0, 1).
func (w *PeriodicWave) At(phase float64) float64 {
	return interp.Table(w.table, phase*waveTableSize)
}

// Oscillator is a periodic source with frequency and detune parameters.
type Oscillator struct {
	*Unit

	frequency *Param
	detune    *Param

	waveform Waveform
	wave     *PeriodicWave
	phase    float64

	started bool
	startAt float64
	stopAt  float64
}

// NewOscillator creates a sine oscillator at frequency Hz. It is silent
// until started.
func NewOscillator(ctx *Context, frequency float64) (*Oscillator, error) {
	if !core.IsFinite(frequency) {
		return nil, fmt.Errorf("%w: oscillator frequency must be finite: %f", ErrInvalidArgument, frequency)
	}

	nyquist := ctx.sampleRate / 2

	o := &Oscillator{stopAt: math.Inf(1)}
	o.Unit = ctx.newUnit("oscillator", 0, 1, o)
	o.frequency = newParam(o.Unit, "frequency", frequency, -nyquist, nyquist)
	o.detune = newParam(o.Unit, "detune", 0, -153600, 153600)

	return o, nil
}

// Frequency returns the frequency parameter in Hz.
func (o *Oscillator) Frequency() *Param { return o.frequency }

// Detune returns the detune parameter in cents.
func (o *Oscillator) Detune() *Param { return o.detune }

// SetWaveform selects one of the built-in shapes.
func (o *Oscillator) SetWaveform(w Waveform) error {
	if w < WaveSine || w > WaveTriangle {
		return fmt.Errorf("%w: unknown waveform %d", ErrInvalidArgument, w)
	}

	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	o.waveform = w
	o.wave = nil

	return nil
}

// SetPeriodicWave switches the oscillator to a custom wave.
func (o *Oscillator) SetPeriodicWave(w *PeriodicWave) error {
	if w == nil {
		return fmt.Errorf("%w: nil periodic wave", ErrInvalidArgument)
	}

	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	o.waveform = WaveCustom
	o.wave = w

	return nil
}

// Start begins playback at context time when.
func (o *Oscillator) Start(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if o.started {
		return fmt.Errorf("%w: oscillator already started", ErrInvalidState)
	}

	o.started = true
	o.startAt = when
	o.ctx.startSource(o.Unit)

	return nil
}

// Stop ends playback at context time when.
func (o *Oscillator) Stop(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if !o.started {
		return fmt.Errorf("%w: oscillator not started", ErrInvalidState)
	}

	o.stopAt = when

	return nil
}

func (o *Oscillator) process(u *Unit, _ []Signal) {
	c := u.ctx
	out := u.output(0, 1)[0]

	for i := range out {
		t := c.frameTime(i)
		if !o.started || t < o.startAt || t >= o.stopAt {
			out[i] = 0
			continue
		}

		out[i] = o.sample(o.phase)

		f := o.frequency.at(i)
		if d := o.detune.at(i); d != 0 {
			f *= math.Exp2(d / 1200)
		}

		o.phase += f / c.sampleRate
		o.phase -= math.Floor(o.phase)
	}

	if o.started && c.frameTime(len(out)) >= o.stopAt {
		c.retire(u)
	}
}

func (o *Oscillator) sample(phase float64) float64 {
	switch o.waveform {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}

		return -1
	case WaveSawtooth:
		return 2 * (phase - math.Floor(phase+0.5))
	case WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(2*math.Pi*phase))
	case WaveCustom:
		return o.wave.At(phase)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
