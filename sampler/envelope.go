package sampler

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

// Envelope reduces buf to width amplitude columns for a waveform overview.
// Column i reads the frame at i*len/width, averages the first two
// channels, and compresses with a square root. The result is normalized so
// the loudest column is exactly 1; a silent buffer yields all zeros.
func Envelope(buf *graph.Buffer, width int) ([]float64, error) {
	if width <= 0 {
		return nil, fmt.Errorf("envelope width must be > 0: %d", width)
	}

	if buf == nil || buf.Len() == 0 {
		return nil, fmt.Errorf("envelope of empty buffer")
	}

	n := buf.Len()
	left := buf.Channels[0]
	right := left

	if buf.NumChannels() > 1 {
		right = buf.Channels[1]
	}

	out := make([]float64, width)
	peak := 0.0

	for i := range out {
		idx := i * n / width
		v := math.Sqrt(math.Abs((left[idx] + right[idx]) / 2))
		out[i] = v
		peak = max(peak, v)
	}

	if peak == 0 {
		return out, nil
	}

	for i := range out {
		out[i] /= peak
	}

	return out, nil
}
