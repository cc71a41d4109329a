// Package menagerie wires the effect chain, the sampler manager and the
// pattern sequencer into one engine behind the surface a front-end drives.
package menagerie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-menagerie/dsp/effectchain"
	"github.com/cwbudde/algo-menagerie/dsp/graph"
	"github.com/cwbudde/algo-menagerie/sampler"
	"github.com/cwbudde/algo-menagerie/sequencer"
)

// ErrNoPatterns is returned by pattern controls when the current
// instrument has none.
var ErrNoPatterns = errors.New("menagerie: instrument has no patterns")

// Option configures an Engine.
type Option func(*config)

type config struct {
	blockSize int
	logger    *slog.Logger
	catalog   sampler.Catalog
	impulse   *graph.Buffer
	lookahead []sequencer.LookaheadOption
}

// WithBlockSize sets the render quantum in frames.
func WithBlockSize(frames int) Option {
	return func(c *config) { c.blockSize = frames }
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCatalog replaces the built-in instruments.
func WithCatalog(catalog sampler.Catalog) Option {
	return func(c *config) { c.catalog = catalog }
}

// WithImpulse sets the reverb impulse response.
func WithImpulse(impulse *graph.Buffer) Option {
	return func(c *config) { c.impulse = impulse }
}

// WithLookahead passes options to every pattern scheduler.
func WithLookahead(opts ...sequencer.LookaheadOption) Option {
	return func(c *config) { c.lookahead = append(c.lookahead, opts...) }
}

// Engine is the whole instrument: voices from the sampler manager run
// through the effect chain into the context's destination.
type Engine struct {
	ctx     *graph.Context
	chain   *effectchain.Chain
	manager *sampler.Manager
	logger  *slog.Logger
	cfg     config

	mu         sync.Mutex
	sequencers map[string]*sequencer.Sequencer
	schedulers []*sequencer.Lookahead
	looping    string // instrument whose loop the engine last drove
}

// NewEngine builds the graph at sampleRate and starts with the effect
// chain in passthrough and no instrument loaded.
func NewEngine(sampleRate float64, loader sampler.Loader, opts ...Option) (*Engine, error) {
	cfg := config{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		catalog: sampler.DefaultCatalog(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		return nil, errors.New("menagerie: nil logger")
	}

	ctxOpts := []graph.Option{graph.WithLogger(cfg.logger)}
	if cfg.blockSize > 0 {
		ctxOpts = append(ctxOpts, graph.WithBlockSize(cfg.blockSize))
	}

	ctx, err := graph.NewContext(sampleRate, ctxOpts...)
	if err != nil {
		return nil, err
	}

	chain, err := effectchain.New(ctx,
		effectchain.DefaultRegistry(effectchain.WithImpulse(cfg.impulse)),
		effectchain.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	manager, err := sampler.NewManager(ctx, loader,
		sampler.WithCatalog(cfg.catalog),
		sampler.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	if err := graph.Connect(manager.Output(), chain, ctx.Destination()); err != nil {
		return nil, err
	}

	e := &Engine{
		ctx:        ctx,
		chain:      chain,
		manager:    manager,
		logger:     cfg.logger,
		cfg:        cfg,
		sequencers: make(map[string]*sequencer.Sequencer),
	}

	ctx.OnRender(e.pump)

	return e, nil
}

// Context returns the render context.
func (e *Engine) Context() *graph.Context { return e.ctx }

// Chain returns the effect chain.
func (e *Engine) Chain() *effectchain.Chain { return e.chain }

// Manager returns the sampler manager.
func (e *Engine) Manager() *sampler.Manager { return e.manager }

// Render fills dst with interleaved stereo output.
func (e *Engine) Render(dst []float32) { e.ctx.Render(dst) }

// ConnectNodes rebuilds the effect chain from effect names.
func (e *Engine) ConnectNodes(names []string) error {
	return e.chain.ConnectNames(names)
}

// ApplyPreset connects preset number i, counting from 1.
func (e *Engine) ApplyPreset(i int) error {
	return e.chain.ApplyPreset(i)
}

// Effects returns the names of the connected effects in signal order.
func (e *Engine) Effects() []string {
	current := e.chain.Current()

	out := make([]string, len(current))
	for i, n := range current {
		out[i] = string(n)
	}

	return out
}

// ChangeSampler switches to instrument name, loading it on first use. The
// instrument's patterns are registered the first time it becomes current.
// A pattern loop still running on the previous instrument is stopped.
// A load that completes after ctx is cancelled still switches the engine.
func (e *Engine) ChangeSampler(ctx context.Context, name string) error {
	if _, err := e.manager.ChangeSampler(ctx, name); err != nil {
		return err
	}

	if _, err := e.currentSequencer(); err != nil && !errors.Is(err, ErrNoPatterns) {
		return err
	}

	return nil
}

// follow stops the loop of an instrument the manager has switched away
// from. Caller holds e.mu.
func (e *Engine) follow(cur *sampler.Sampler) {
	if e.looping == cur.Name() {
		return
	}

	if prev := e.sequencers[e.looping]; prev != nil {
		prev.Stop()
	}

	e.looping = cur.Name()
}

// sequencerFor returns cur's sequencer, registering its patterns on first
// use. It is nil for an instrument without patterns. Caller holds e.mu.
func (e *Engine) sequencerFor(cur *sampler.Sampler) (*sequencer.Sequencer, error) {
	name := cur.Name()

	if seq, ok := e.sequencers[name]; ok {
		return seq, nil
	}

	var seq *sequencer.Sequencer

	if def := e.cfg.catalog[name]; len(def.Patterns) > 0 {
		var err error

		seq, err = e.newSequencer(name, def)
		if err != nil {
			return nil, err
		}
	}

	e.sequencers[name] = seq

	return seq, nil
}

// newSequencer registers def's patterns with a lookahead scheduler on the
// engine clock. Caller holds e.mu.
func (e *Engine) newSequencer(name string, def sampler.Definition) (*sequencer.Sequencer, error) {
	patterns, err := sequencer.ParsePatterns(def.Patterns)
	if err != nil {
		return nil, fmt.Errorf("menagerie: %s patterns: %w", name, err)
	}

	factory := func(tempo float64, cb func(sequencer.Note, float64)) (sequencer.Scheduler, error) {
		l, err := sequencer.NewLookahead(e.ctx.CurrentTime, tempo, cb, e.cfg.lookahead...)
		if err != nil {
			return nil, err
		}

		e.schedulers = append(e.schedulers, l)

		return l, nil
	}

	trigger := sequencer.TriggerFunc(e.manager.Play)

	return sequencer.New(trigger, patterns, def.Tempo, factory,
		sequencer.WithActive(def.ActivePatterns...),
		sequencer.WithLogger(e.logger))
}

// pump advances every pattern scheduler. It runs at the start of each
// render quantum, after retiring the loop of an instrument that is no
// longer current.
func (e *Engine) pump(now float64) {
	cur, err := e.manager.Current()

	e.mu.Lock()
	if err == nil {
		e.follow(cur)
	}

	schedulers := append([]*sequencer.Lookahead(nil), e.schedulers...)
	e.mu.Unlock()

	for _, l := range schedulers {
		l.Pump(now)
	}
}

// Instrument returns the current instrument name, or "" before the first
// load resolves.
func (e *Engine) Instrument() string {
	cur, err := e.manager.Current()
	if err != nil {
		return ""
	}

	return cur.Name()
}

// Play triggers key now.
func (e *Engine) Play(key rune) error {
	return e.manager.Play(key, e.ctx.CurrentTime())
}

// PlayAtPosition scrubs the current instrument to fraction of its length.
func (e *Engine) PlayAtPosition(fraction float64) error {
	return e.manager.PlayAtPosition(fraction, e.ctx.CurrentTime())
}

// PlayFullSample previews the current instrument's whole buffer.
func (e *Engine) PlayFullSample(onEnded func()) error {
	return e.manager.PlayFullSample(onEnded)
}

// StopFullSample stops the preview.
func (e *Engine) StopFullSample() {
	e.manager.StopFullSample()
}

func (e *Engine) currentSequencer() (*sequencer.Sequencer, error) {
	cur, err := e.manager.Current()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.follow(cur)

	seq, err := e.sequencerFor(cur)
	if err != nil {
		return nil, err
	}

	if seq == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPatterns, cur.Name())
	}

	return seq, nil
}

// PlayPattern starts the current instrument's pattern loop.
func (e *Engine) PlayPattern() error {
	seq, err := e.currentSequencer()
	if err != nil {
		return err
	}

	seq.Play()

	return nil
}

// StopPattern stops the current instrument's pattern loop.
func (e *Engine) StopPattern() error {
	seq, err := e.currentSequencer()
	if err != nil {
		return err
	}

	seq.Stop()

	return nil
}

// SetPattern enables or disables a pattern layer of the current
// instrument.
func (e *Engine) SetPattern(id int, enabled bool) error {
	seq, err := e.currentSequencer()
	if err != nil {
		return err
	}

	seq.SetPattern(id, enabled)

	return nil
}

// PatternState describes one pattern layer.
type PatternState struct {
	ID     int
	Steps  string
	Active bool
}

// Patterns lists the current instrument's pattern layers.
func (e *Engine) Patterns() ([]PatternState, error) {
	seq, err := e.currentSequencer()
	if err != nil {
		return nil, err
	}

	active := make(map[int]bool)
	for _, id := range seq.Active() {
		active[id] = true
	}

	var out []PatternState
	for _, p := range seq.Patterns() {
		out = append(out, PatternState{ID: p.ID, Steps: p.Steps, Active: active[p.ID]})
	}

	return out, nil
}

// PatternPlaying reports whether the current instrument's loop runs.
func (e *Engine) PatternPlaying() bool {
	seq, err := e.currentSequencer()

	return err == nil && seq.Playing()
}

// Waveform returns the current instrument's overview at width columns.
func (e *Engine) Waveform(width int) ([]float64, error) {
	s, err := e.manager.Current()
	if err != nil {
		return nil, err
	}

	return sampler.Envelope(s.Buffer(), width)
}
