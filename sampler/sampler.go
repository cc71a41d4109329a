package sampler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-menagerie/dsp/core"
	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

// ScrubLength is how long a click-to-seek voice plays, in seconds.
const ScrubLength = 0.2

// Entry is the resolved playback setting for one key.
type Entry struct {
	Offset       float64
	Gain         float64
	Length       float64 // 0 plays until stopped or the buffer ends
	PlaybackRate float64
}

// Option configures a Sampler or Manager.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	catalog Catalog
}

func defaultOptions() options {
	return options{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		catalog: DefaultCatalog(),
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCatalog replaces the built-in instrument catalog. Only the Manager
// reads it.
func WithCatalog(c Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// Sampler plays keyed slices of one buffer. A hit on a key cuts the voice
// that key starts latest on the context clock; hits on different keys
// overlap.
type Sampler struct {
	name   string
	ctx    *graph.Context
	buffer *graph.Buffer
	table  map[rune]Entry
	output *graph.Gain
	logger *slog.Logger

	mu     sync.Mutex
	voices map[rune]voice
}

// voice is the latest-starting source of a key.
type voice struct {
	src   *graph.BufferSource
	start float64
}

// New resolves def against buf. Every offset must lie inside the buffer.
func New(ctx *graph.Context, name string, def Definition, buf *graph.Buffer, opts ...Option) (*Sampler, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, fmt.Errorf("sampler %s: empty buffer", name)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	table := make(map[rune]Entry, len(def.Offsets))
	duration := buf.Duration()

	for key, offset := range def.Offsets {
		if offset < 0 || offset >= duration || !core.IsFinite(offset) {
			return nil, fmt.Errorf("sampler %s: key %q offset %v outside [0, %v)", name, key, offset, duration)
		}

		e := Entry{Offset: offset, Gain: 1, PlaybackRate: 1}
		if g, ok := def.Gains[key]; ok {
			e.Gain = g
		}

		if l, ok := def.Lengths[key]; ok {
			e.Length = l
		}

		if r, ok := def.Rates[key]; ok {
			e.PlaybackRate = r
		}

		table[key] = e
	}

	output, err := graph.NewGain(ctx, 1)
	if err != nil {
		return nil, err
	}

	return &Sampler{
		name:   name,
		ctx:    ctx,
		buffer: buf,
		table:  table,
		output: output,
		logger: o.logger,
		voices: make(map[rune]voice),
	}, nil
}

// Name returns the instrument name.
func (s *Sampler) Name() string { return s.name }

// Buffer returns the decoded source.
func (s *Sampler) Buffer() *graph.Buffer { return s.buffer }

// Duration returns the buffer length in seconds.
func (s *Sampler) Duration() float64 { return s.buffer.Duration() }

// Output returns the bus every voice of this sampler is mixed into.
func (s *Sampler) Output() *graph.Unit { return s.output.Unit }

// Lookup resolves key.
func (s *Sampler) Lookup(key rune) (Entry, error) {
	e, ok := s.table[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return e, nil
}

// Play starts the sample for key at context time when.
func (s *Sampler) Play(key rune, when float64) error {
	e, err := s.Lookup(key)
	if err != nil {
		return err
	}

	src, err := s.startVoice(voiceParams{entry: e, gain: e.Gain}, when)
	if err != nil {
		return err
	}

	s.retrigger(key, src, when)

	return nil
}

// PlayOffset starts an unkeyed voice at offset seconds into the buffer.
// length <= 0 plays until the buffer ends.
func (s *Sampler) PlayOffset(offset, when, length float64) error {
	_, err := s.startVoice(voiceParams{
		entry: Entry{Offset: offset, Gain: 1, Length: length, PlaybackRate: 1},
		gain:  1,
	}, when)

	return err
}

// PlayAtPosition scrubs to fraction of the buffer's duration.
func (s *Sampler) PlayAtPosition(fraction, when float64) error {
	if fraction < 0 || fraction > 1 || !core.IsFinite(fraction) {
		return fmt.Errorf("%w: position %v outside [0, 1]", graph.ErrInvalidArgument, fraction)
	}

	return s.PlayOffset(fraction*s.Duration(), when, ScrubLength)
}

type voiceParams struct {
	entry   Entry
	gain    float64
	fadeIn  float64
	fadeOut float64
}

// startVoice builds source -> gain -> output and schedules it.
func (s *Sampler) startVoice(p voiceParams, when float64) (*graph.BufferSource, error) {
	src, err := graph.NewBufferSource(s.ctx, s.buffer)
	if err != nil {
		return nil, err
	}

	if err := src.PlaybackRate().SetValue(p.entry.PlaybackRate); err != nil {
		return nil, err
	}

	amp, err := graph.NewGain(s.ctx, p.gain)
	if err != nil {
		return nil, err
	}

	if err := s.scheduleFades(amp.Gain(), p, when); err != nil {
		return nil, err
	}

	if err := graph.Connect(src, amp, s.output); err != nil {
		return nil, err
	}

	src.OnEnded(func() { graph.Disconnect(amp) })

	if err := src.Start(when, p.entry.Offset, p.entry.Length); err != nil {
		graph.Disconnect(amp)

		return nil, err
	}

	return src, nil
}

func (s *Sampler) scheduleFades(g *graph.Param, p voiceParams, when float64) error {
	if p.fadeIn > 0 {
		if err := g.SetValueAtTime(0, when); err != nil {
			return err
		}

		if err := g.LinearRampToValueAtTime(p.gain, when+p.fadeIn); err != nil {
			return err
		}
	}

	if p.fadeOut > 0 && p.entry.Length > 0 && p.entry.PlaybackRate > 0 {
		end := when + p.entry.Length/p.entry.PlaybackRate
		start := max(when+p.fadeIn, end-p.fadeOut)

		if err := g.SetValueAtTime(p.gain, start); err != nil {
			return err
		}

		if err := g.LinearRampToValueAtTime(0, end); err != nil {
			return err
		}
	}

	return nil
}

// retrigger resolves the same-key overlap in clock order. A hit at or
// after the latest voice's start cuts that voice at when. A hit scheduled
// before it plays only until the latest voice starts.
func (s *Sampler) retrigger(key rune, src *graph.BufferSource, when float64) {
	s.mu.Lock()
	prev, ok := s.voices[key]

	if ok && prev.start > when {
		s.mu.Unlock()
		stopVoice(src, prev.start, s.logger)

		return
	}

	s.voices[key] = voice{src: src, start: when}
	s.mu.Unlock()

	if ok {
		stopVoice(prev.src, when, s.logger)
	}
}

// stopVoice stops src, tolerating a voice that never started or was
// already stopped. It is the only place such a stop race is discarded.
func stopVoice(src *graph.BufferSource, when float64, logger *slog.Logger) {
	err := src.Stop(when)
	if err == nil {
		return
	}

	if errors.Is(err, graph.ErrInvalidState) {
		logger.Debug("ignored stop on inactive voice", "error", err)

		return
	}

	logger.Warn("voice stop failed", "error", err)
}
