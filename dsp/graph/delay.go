package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/delay"
)

// maxDelaySeconds bounds the delay buffer a single node may allocate.
const maxDelaySeconds = 180

// Delay delays its input by the delayTime parameter (seconds), with cubic
// interpolation for fractional sample offsets.
type Delay struct {
	*Unit

	delayTime *Param
	size      int
	lines     []*delay.Line
	offsets   []float64 // per-frame delay in samples
}

// NewDelay creates a delay with a buffer of maxSeconds and an initial
// delay time.
func NewDelay(ctx *Context, maxSeconds, initial float64) (*Delay, error) {
	if maxSeconds <= 0 || maxSeconds > maxDelaySeconds || math.IsNaN(maxSeconds) {
		return nil, fmt.Errorf("%w: max delay must be in (0, %d] seconds: %f", ErrInvalidArgument, maxDelaySeconds, maxSeconds)
	}

	if initial < 0 || initial > maxSeconds || math.IsNaN(initial) {
		return nil, fmt.Errorf("%w: delay time must be in [0, %f]: %f", ErrInvalidArgument, maxSeconds, initial)
	}

	d := &Delay{
		size:    int(math.Ceil(maxSeconds*ctx.sampleRate)) + 4,
		offsets: make([]float64, ctx.blockSize),
	}
	d.Unit = ctx.newUnit("delay", 1, 1, d)
	d.delayTime = newParam(d.Unit, "delayTime", initial, 0, maxSeconds)

	return d, nil
}

// DelayTime returns the delay time parameter in seconds.
func (d *Delay) DelayTime() *Param { return d.delayTime }

func (d *Delay) process(u *Unit, in []Signal) {
	src := in[0]

	for len(d.lines) < src.Channels() {
		line, err := delay.New(d.size)
		if err != nil {
			panic(err) // size is validated in NewDelay
		}

		d.lines = append(d.lines, line)
	}

	out := u.output(0, len(d.lines))
	sr := u.ctx.sampleRate

	for i := range d.offsets {
		d.offsets[i] = d.delayTime.at(i) * sr
	}

	for ch, line := range d.lines {
		var x []float64
		if ch < len(src) {
			x = src[ch]
		} else if len(src) == 1 {
			x = src[0]
		}

		line.Tap(out[ch], x, d.offsets)
	}
}
