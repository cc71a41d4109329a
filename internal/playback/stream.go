// Package playback sends rendered audio to the sound card.
package playback

import (
	"encoding/binary"
	"math"
	"sync"
)

// Renderer fills dst with interleaved stereo float32 frames.
type Renderer interface {
	Render(dst []float32)
}

// Stream adapts a Renderer to io.Reader, encoding float32 little-endian
// interleaved stereo. It never returns an error or EOF.
type Stream struct {
	mu      sync.Mutex
	r       Renderer
	samples []float32
}

// NewStream wraps r.
func NewStream(r Renderer) *Stream {
	return &Stream{r: r}
}

// Read renders len(p)/4 samples into p. A trailing partial sample is left
// untouched and not counted.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(p) / 4
	if cap(s.samples) < n {
		s.samples = make([]float32, n)
	}

	samples := s.samples[:n]
	s.r.Render(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}

	return n * 4, nil
}
