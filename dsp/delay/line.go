// Package delay implements the circular buffer behind the graph delay node.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/interp"
)

// Line is a circular delay line. Read offsets count backwards from the most
// recently written sample, so Read(0) returns the newest value.
type Line struct {
	buf []float64
	pos int // next write index
}

// New returns a delay line holding size samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buf: make([]float64, size)}, nil
}

// Len returns the capacity in samples.
func (l *Line) Len() int { return len(l.buf) }

// Write appends one sample, overwriting the oldest.
func (l *Line) Write(sample float64) {
	l.buf[l.pos] = sample

	if l.pos++; l.pos == len(l.buf) {
		l.pos = 0
	}
}

// Read returns the sample written delay samples before the newest one.
// Offsets are clamped to the stored history.
func (l *Line) Read(delay int) float64 {
	n := len(l.buf)
	delay = max(0, min(delay, n-1))

	return l.buf[(l.pos-1-delay+2*n)%n]
}

// ReadFractional reads between samples with cubic Hermite interpolation.
func (l *Line) ReadFractional(delay float64) float64 {
	delay = math.Max(0, math.Min(delay, float64(len(l.buf)-1)))

	p := int(delay)
	t := delay - float64(p)

	if t == 0 {
		return l.Read(p)
	}

	return interp.Hermite4(t, l.Read(max(0, p-1)), l.Read(p), l.Read(p+1), l.Read(p+2))
}

// Tap writes src through the line and reads dst[i] at delays[i] samples
// behind src[i]. A nil src writes silence. dst and delays must be at least
// as long as src when src is non-nil.
func (l *Line) Tap(dst, src, delays []float64) {
	for i := range dst {
		v := 0.0
		if src != nil {
			v = src[i]
		}

		l.Write(v)
		dst[i] = l.ReadFractional(delays[i])
	}
}
