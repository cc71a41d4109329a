package sequencer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Trigger plays a sampler key at an audio-clock time.
type Trigger interface {
	Play(key rune, when float64) error
}

// TriggerFunc adapts a function to Trigger.
type TriggerFunc func(key rune, when float64) error

// Play calls f.
func (f TriggerFunc) Play(key rune, when float64) error { return f(key, when) }

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActive sets the initially enabled pattern ids.
func WithActive(ids ...int) Option {
	return func(s *Sequencer) {
		for _, id := range ids {
			s.active[id] = struct{}{}
		}
	}
}

// Sequencer drives a Trigger from patterns looping on a Scheduler.
type Sequencer struct {
	trigger   Trigger
	patterns  []Pattern
	scheduler Scheduler
	logger    *slog.Logger

	mu      sync.Mutex
	active  map[int]struct{}
	playing bool
}

// New registers every pattern as a loop on a scheduler built by factory.
// No pattern is active unless WithActive says so.
func New(trigger Trigger, patterns []Pattern, tempo float64, factory SchedulerFactory, opts ...Option) (*Sequencer, error) {
	if trigger == nil {
		return nil, errors.New("sequencer: nil trigger")
	}

	if factory == nil {
		return nil, errors.New("sequencer: nil scheduler factory")
	}

	s := &Sequencer{
		trigger:  trigger,
		patterns: slices.Clone(patterns),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		active:   make(map[int]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	scheduler, err := factory(tempo, s.deliver)
	if err != nil {
		return nil, fmt.Errorf("sequencer: %w", err)
	}

	for _, p := range s.patterns {
		if err := scheduler.AddLoop(p.Len(), p.Notes()); err != nil {
			return nil, fmt.Errorf("sequencer: pattern %d: %w", p.ID, err)
		}
	}

	s.scheduler = scheduler

	return s, nil
}

// deliver is the scheduler callback. Notes of inactive patterns are dropped.
func (s *Sequencer) deliver(n Note, when float64) {
	s.mu.Lock()
	_, on := s.active[n.Pattern]
	s.mu.Unlock()

	if !on {
		return
	}

	if err := s.trigger.Play(n.Key, when); err != nil {
		s.logger.Warn("pattern trigger failed", "pattern", n.Pattern, "key", string(n.Key), "error", err)
	}
}

// Play starts the scheduler clock.
func (s *Sequencer) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		return
	}

	s.playing = true
	s.scheduler.Start()
}

// Stop halts the scheduler clock. Callbacks already in flight still arrive
// and are filtered as usual.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return
	}

	s.playing = false
	s.scheduler.Stop()
}

// Playing reports whether the clock runs.
func (s *Sequencer) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.playing
}

// SetPattern enables or disables pattern id. Repeating a request is a no-op.
func (s *Sequencer) SetPattern(id int, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled {
		s.active[id] = struct{}{}
	} else {
		delete(s.active, id)
	}

	s.logger.Debug("pattern toggled", "pattern", id, "enabled", enabled)
}

// Active returns the enabled pattern ids in ascending order.
func (s *Sequencer) Active() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Sorted(maps.Keys(s.active))
}

// Patterns returns the registered patterns.
func (s *Sequencer) Patterns() []Pattern { return slices.Clone(s.patterns) }
