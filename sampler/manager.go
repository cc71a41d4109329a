package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

// State is the load state of one instrument.
type State int

// Instrument load states.
const (
	NotRequested State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case NotRequested:
		return "not-requested"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Manager loads instruments on first use, keeps them for the session and
// tracks the current one. It also owns the preview voice that plays the
// current instrument's whole buffer.
type Manager struct {
	ctx     *graph.Context
	loader  Loader
	catalog Catalog
	output  *graph.Gain
	logger  *slog.Logger
	opts    []Option

	group singleflight.Group

	mu      sync.Mutex
	states  map[string]State
	cache   map[string]*Sampler
	current *Sampler
	preview *graph.BufferSource
}

// NewManager creates a manager that decodes instruments through loader.
// Every sampler it builds is mixed into Output.
func NewManager(ctx *graph.Context, loader Loader, opts ...Option) (*Manager, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: nil loader", graph.ErrInvalidArgument)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	output, err := graph.NewGain(ctx, 1)
	if err != nil {
		return nil, err
	}

	return &Manager{
		ctx:     ctx,
		loader:  loader,
		catalog: o.catalog,
		output:  output,
		logger:  o.logger,
		opts:    opts,
		states:  make(map[string]State),
		cache:   make(map[string]*Sampler),
	}, nil
}

// Output returns the bus carrying every keyed and preview voice.
func (m *Manager) Output() *graph.Unit { return m.output.Unit }

// Catalog returns the instrument definitions.
func (m *Manager) Catalog() Catalog { return m.catalog }

// State reports the load state of name.
func (m *Manager) State(name string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.states[name]
}

// Current returns the active sampler.
func (m *Manager) Current() (*Sampler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNotReady
	}

	return m.current, nil
}

// ChangeSampler makes name current, loading it first if needed. Concurrent
// calls for the same name share one load. The switch happens only once the
// sampler is ready, so triggers keep using the previous instrument until
// then; whichever load resolves last wins. A failed load is not retried
// until the next call.
func (m *Manager) ChangeSampler(ctx context.Context, name string) (*Sampler, error) {
	def, ok := m.catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstrument, name)
	}

	m.mu.Lock()
	if s, ok := m.cache[name]; ok {
		m.activate(s)
		m.mu.Unlock()

		return s, nil
	}
	m.mu.Unlock()

	// The shared load outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)

	ch := m.group.DoChan(name, func() (any, error) {
		return m.load(loadCtx, name, def)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.(*Sampler), nil
	}
}

func (m *Manager) load(ctx context.Context, name string, def Definition) (*Sampler, error) {
	m.mu.Lock()
	if s, ok := m.cache[name]; ok {
		m.activate(s)
		m.mu.Unlock()

		return s, nil
	}

	m.states[name] = Loading
	m.mu.Unlock()

	m.logger.Debug("loading instrument", "name", name, "file", def.SourceFile)

	s, err := m.build(ctx, name, def)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.states[name] = NotRequested
		m.logger.Debug("instrument load failed", "name", name, "error", err)

		return nil, err
	}

	m.cache[name] = s
	m.states[name] = Ready
	m.activate(s)
	m.logger.Debug("instrument ready", "name", name, "duration", s.Duration())

	return s, nil
}

func (m *Manager) build(ctx context.Context, name string, def Definition) (*Sampler, error) {
	buf, err := m.loader.Load(ctx, def.SourceFile)
	if err != nil {
		return nil, &LoadError{File: def.SourceFile, Err: err}
	}

	s, err := New(m.ctx, name, def, buf, m.opts...)
	if err != nil {
		return nil, &LoadError{File: def.SourceFile, Err: err}
	}

	if err := graph.Connect(s.Output(), m.output); err != nil {
		return nil, err
	}

	return s, nil
}

// activate makes s current and retires a preview bound to another buffer.
// Caller holds m.mu.
func (m *Manager) activate(s *Sampler) {
	if m.current == s {
		return
	}

	m.current = s

	if m.preview != nil {
		stopVoice(m.preview, m.ctx.CurrentTime(), m.logger)
		m.preview = nil
	}
}

// Play triggers key on the current sampler at when.
func (m *Manager) Play(key rune, when float64) error {
	s, err := m.Current()
	if err != nil {
		return err
	}

	return s.Play(key, when)
}

// PlayAtPosition scrubs the current sampler to fraction of its length.
func (m *Manager) PlayAtPosition(fraction, when float64) error {
	s, err := m.Current()
	if err != nil {
		return err
	}

	return s.PlayAtPosition(fraction, when)
}

// PlayFullSample plays the current buffer from the start, replacing any
// preview already running. onComplete, if set, runs when playback ends,
// whether it ran out or was stopped.
func (m *Manager) PlayFullSample(onComplete func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNotReady
	}

	now := m.ctx.CurrentTime()

	if m.preview != nil {
		stopVoice(m.preview, now, m.logger)
	}

	src, err := graph.NewBufferSource(m.ctx, m.current.Buffer())
	if err != nil {
		return err
	}

	if err := graph.Connect(src, m.output); err != nil {
		return err
	}

	if onComplete != nil {
		src.OnEnded(onComplete)
	}

	if err := src.Start(now, 0, 0); err != nil {
		return err
	}

	m.preview = src

	return nil
}

// StopFullSample stops the preview voice. Stopping when nothing plays is a
// no-op.
func (m *Manager) StopFullSample() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.preview == nil {
		return
	}

	stopVoice(m.preview, m.ctx.CurrentTime(), m.logger)
	m.preview = nil
}
