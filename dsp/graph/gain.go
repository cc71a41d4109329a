package graph

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-menagerie/dsp/core"
)

// Gain scales its input by the gain parameter.
type Gain struct {
	*Unit
	gain *Param
}

// NewGain creates a gain unit with the given initial gain.
func NewGain(ctx *Context, value float64) (*Gain, error) {
	if !core.IsFinite(value) {
		return nil, fmt.Errorf("%w: gain must be finite: %f", ErrInvalidArgument, value)
	}

	g := &Gain{}
	g.Unit = ctx.newUnit("gain", 1, 1, g)
	g.gain = newParam(g.Unit, "gain", value, -math.MaxFloat32, math.MaxFloat32)

	return g, nil
}

// Gain returns the gain parameter.
func (g *Gain) Gain() *Param { return g.gain }

func (g *Gain) process(u *Unit, in []Signal) {
	src := in[0]
	out := u.output(0, src.Channels())

	if g.gain.constant {
		k := g.gain.first()
		for ch := range out {
			vecmath.ScaleBlock(out[ch], src[ch], k)
		}

		return
	}

	for ch := range out {
		vecmath.MulBlock(out[ch], src[ch], g.gain.buf)
	}
}
