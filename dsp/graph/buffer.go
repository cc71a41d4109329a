package graph

import (
	"fmt"

	"github.com/cwbudde/algo-menagerie/dsp/core"
)

// Buffer is decoded audio held in memory, channel-major.
type Buffer struct {
	SampleRate float64
	Channels   [][]float64
}

// NewBuffer wraps channel data. All channels must have equal length.
func NewBuffer(sampleRate float64, channels [][]float64) (*Buffer, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("%w: buffer sample rate must be positive and finite: %f", ErrInvalidArgument, sampleRate)
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: buffer has no channels", ErrInvalidArgument)
	}

	for i, ch := range channels {
		if len(ch) != len(channels[0]) {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidArgument, i, len(ch), len(channels[0]))
		}
	}

	return &Buffer{SampleRate: sampleRate, Channels: channels}, nil
}

// Len returns the length in frames.
func (b *Buffer) Len() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}

	return len(b.Channels[0])
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}

	return len(b.Channels)
}

// Duration returns the length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}

	return float64(b.Len()) / b.SampleRate
}
