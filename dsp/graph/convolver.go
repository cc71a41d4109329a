package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/conv"
)

// Convolver convolves its input with an impulse response. The output is
// stereo: a mono impulse is applied to both channels, a multichannel
// impulse maps its first two channels to left and right.
type Convolver struct {
	*Unit

	impulse *Buffer
	scale   float64
	convs   [2]*conv.Partitioned
	scratch []float64
}

// NewConvolver creates a convolver for impulse. With normalize set, the
// impulse is scaled to unit mean energy per channel.
func NewConvolver(ctx *Context, impulse *Buffer, normalize bool) (*Convolver, error) {
	if impulse == nil || impulse.Len() == 0 {
		return nil, fmt.Errorf("%w: empty impulse response", ErrInvalidArgument)
	}

	scale := 1.0
	if normalize {
		scale = impulseScale(impulse)
	}

	c := &Convolver{
		impulse: impulse,
		scale:   scale,
		scratch: make([]float64, ctx.blockSize),
	}

	for ch := range c.convs {
		data := impulse.Channels[min(ch, impulse.NumChannels()-1)]

		kernel := make([]float64, len(data))
		for i, v := range data {
			kernel[i] = v * scale
		}

		p, err := conv.NewPartitioned(kernel, ctx.blockSize)
		if err != nil {
			return nil, fmt.Errorf("graph: convolver: %w", err)
		}

		c.convs[ch] = p
	}

	c.Unit = ctx.newUnit("convolver", 1, 1, c)

	return c, nil
}

// Impulse returns the impulse response.
func (c *Convolver) Impulse() *Buffer { return c.impulse }

// Scale returns the normalization factor applied to the impulse.
func (c *Convolver) Scale() float64 { return c.scale }

// impulseScale returns the factor that brings the mean per-channel energy of
// b to one. Silent impulses are left unscaled.
func impulseScale(b *Buffer) float64 {
	energy := 0.0

	for _, ch := range b.Channels {
		for _, v := range ch {
			energy += v * v
		}
	}

	energy /= float64(len(b.Channels))
	if energy <= 0 {
		return 1
	}

	return 1 / math.Sqrt(energy)
}

func (c *Convolver) process(u *Unit, in []Signal) {
	src := in[0]
	out := u.output(0, len(c.convs))

	for ch, p := range c.convs {
		copy(c.scratch, src[min(ch, len(src)-1)])

		if err := p.ProcessBlockTo(out[ch], c.scratch); err != nil {
			u.ctx.logger.Error("convolver block failed", "error", err)
			clear(out[ch])
		}
	}
}
