package graph

import vecmath "github.com/cwbudde/algo-vecmath"

// Signal holds one render quantum of audio in channel-major order.
type Signal [][]float64

// Channels returns the channel count.
func (s Signal) Channels() int { return len(s) }

// Frames returns the number of frames per channel.
func (s Signal) Frames() int {
	if len(s) == 0 {
		return 0
	}

	return len(s[0])
}

// resize returns s reshaped to channels x frames, reusing storage where
// possible. Contents are unspecified.
func (s Signal) resize(channels, frames int) Signal {
	if cap(s) < channels {
		grown := make(Signal, channels)
		copy(grown, s)
		s = grown
	}

	s = s[:channels]
	for i := range s {
		if cap(s[i]) < frames {
			s[i] = make([]float64, frames)
		}

		s[i] = s[i][:frames]
	}

	return s
}

func (s Signal) clear() {
	for _, ch := range s {
		clear(ch)
	}
}

// accumulate adds src into s. A mono src is spread over every channel of s;
// otherwise channels are matched by index.
func (s Signal) accumulate(src Signal) {
	if len(src) == 1 {
		for _, ch := range s {
			vecmath.AddBlockInPlace(ch, src[0])
		}

		return
	}

	for i := 0; i < len(s) && i < len(src); i++ {
		vecmath.AddBlockInPlace(s[i], src[i])
	}
}

// downmix writes the average of all channels of s into dst.
func (s Signal) downmix(dst []float64) {
	clear(dst)

	if len(s) == 0 {
		return
	}

	for _, ch := range s {
		vecmath.AddBlockInPlace(dst, ch)
	}

	if len(s) > 1 {
		vecmath.ScaleBlock(dst, dst, 1/float64(len(s)))
	}
}

func newSignal(channels, frames int) Signal {
	return Signal(nil).resize(channels, frames)
}
