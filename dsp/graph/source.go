package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/core"
	"github.com/cwbudde/algo-menagerie/dsp/interp"
)

// BufferSource plays a Buffer once. It renders silence until started and is
// detached from the graph when it ends.
type BufferSource struct {
	*Unit

	buffer       *Buffer
	playbackRate *Param

	started bool
	stopped bool
	ended   bool
	startAt float64
	stopAt  float64
	pos     float64 // read position in buffer frames
	endPos  float64

	onEnded func()
}

// NewBufferSource creates a one-shot player for buf.
func NewBufferSource(ctx *Context, buf *Buffer) (*BufferSource, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidArgument)
	}

	s := &BufferSource{buffer: buf, stopAt: math.Inf(1)}
	s.Unit = ctx.newUnit("buffersource", 0, 1, s)
	s.playbackRate = newParam(s.Unit, "playbackRate", 1, 0, 64)

	return s, nil
}

// Buffer returns the buffer being played.
func (s *BufferSource) Buffer() *Buffer { return s.buffer }

// PlaybackRate returns the playback rate parameter.
func (s *BufferSource) PlaybackRate() *Param { return s.playbackRate }

// OnEnded sets a callback run once after the source ends, outside the graph
// lock.
func (s *BufferSource) OnEnded(fn func()) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	s.onEnded = fn
}

// Start schedules playback at context time when, reading from offset
// seconds into the buffer for duration seconds. A duration <= 0 plays to the
// end of the buffer.
func (s *BufferSource) Start(when, offset, duration float64) error {
	if !core.IsFinite(when) || !core.IsFinite(offset) || !core.IsFinite(duration) {
		return fmt.Errorf("%w: start arguments must be finite", ErrInvalidArgument)
	}

	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	if s.started {
		return fmt.Errorf("%w: buffer source already started", ErrInvalidState)
	}

	total := float64(s.buffer.Len())
	sr := s.buffer.SampleRate

	s.started = true
	s.startAt = when
	s.pos = core.Clamp(offset*sr, 0, total)
	s.endPos = total

	if duration > 0 {
		s.endPos = math.Min(total, s.pos+duration*sr)
	}

	s.ctx.startSource(s.Unit)

	return nil
}

// Stop schedules the end of playback at context time when. Stopping a
// source that was never started, or stopping it twice, is an error.
func (s *BufferSource) Stop(when float64) error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	if !s.started {
		return fmt.Errorf("%w: buffer source not started", ErrInvalidState)
	}

	if s.stopped {
		return fmt.Errorf("%w: buffer source already stopped", ErrInvalidState)
	}

	s.stopped = true
	s.stopAt = when

	return nil
}

// Ended reports whether playback has finished.
func (s *BufferSource) Ended() bool {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	return s.ended
}

func (s *BufferSource) process(u *Unit, _ []Signal) {
	c := u.ctx
	out := u.output(0, s.buffer.NumChannels())
	out.clear()

	if !s.started || s.ended {
		return
	}

	step := s.buffer.SampleRate / c.sampleRate

	for i := range out[0] {
		t := c.frameTime(i)
		if t < s.startAt {
			continue
		}

		if t >= s.stopAt || s.pos >= s.endPos {
			s.ended = true
			c.retire(u)

			return
		}

		idx := int(s.pos)
		frac := s.pos - float64(idx)

		for ch, data := range s.buffer.Channels {
			next := data[idx]
			if idx+1 < len(data) {
				next = data[idx+1]
			}

			out[ch][i] = interp.Linear2(frac, data[idx], next)
		}

		s.pos += s.playbackRate.at(i) * step
	}
}

func (s *BufferSource) fireEnded() {
	s.ctx.mu.Lock()
	fn := s.onEnded
	s.ctx.mu.Unlock()

	if fn != nil {
		fn()
	}
}
