package graph

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-menagerie/dsp/interp"
)

// WaveShaper maps each input sample through a transfer curve. The curve
// spans inputs -1..1; inputs outside that range take the end values.
type WaveShaper struct {
	*Unit
	curve []float64
}

// NewWaveShaper creates a shaper with a copy of curve, which needs at
// least two points.
func NewWaveShaper(ctx *Context, curve []float64) (*WaveShaper, error) {
	if len(curve) < 2 {
		return nil, fmt.Errorf("%w: curve needs at least 2 points, got %d", ErrInvalidArgument, len(curve))
	}

	w := &WaveShaper{curve: slices.Clone(curve)}
	w.Unit = ctx.newUnit("waveshaper", 1, 1, w)

	return w, nil
}

// Curve returns a copy of the transfer curve.
func (w *WaveShaper) Curve() []float64 { return slices.Clone(w.curve) }

// Shape maps a single value through the curve.
func (w *WaveShaper) Shape(x float64) float64 {
	return interp.Table(w.curve, (x+1)*0.5*float64(len(w.curve)-1))
}

func (w *WaveShaper) process(u *Unit, in []Signal) {
	src := in[0]
	out := u.output(0, src.Channels())

	for ch := range out {
		for i, x := range src[ch] {
			out[ch][i] = w.Shape(x)
		}
	}
}
