package graph

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

const (
	defaultBlockSize = 128
	maxBlockSize     = 16384
)

type config struct {
	blockSize int
	logger    *slog.Logger
}

// Option configures a Context.
type Option func(*config) error

// WithBlockSize sets the render quantum in frames.
func WithBlockSize(frames int) Option {
	return func(cfg *config) error {
		if frames <= 0 || frames > maxBlockSize {
			return fmt.Errorf("%w: block size must be in [1, %d]: %d", ErrInvalidArgument, maxBlockSize, frames)
		}

		cfg.blockSize = frames

		return nil
	}
}

// WithLogger sets the logger used for render diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidArgument)
		}

		cfg.logger = logger

		return nil
	}
}

// Context owns a node graph and renders it quantum by quantum.
type Context struct {
	mu sync.Mutex

	sampleRate float64
	blockSize  int
	logger     *slog.Logger

	frames atomic.Int64
	nextID atomic.Int64

	// Guarded by mu.
	stamp      int64
	blockStart float64
	dest       *Unit
	running    []*Unit
	retired    []*Unit
	silence    Signal

	hookMu sync.Mutex
	hooks  []func(now float64)

	// Render-side leftovers, owned by the rendering goroutine.
	pending    Signal
	pendingPos int
}

// NewContext creates a render context at sampleRate.
func NewContext(sampleRate float64, opts ...Option) (*Context, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive and finite: %f", ErrInvalidArgument, sampleRate)
	}

	cfg := config{
		blockSize: defaultBlockSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	c := &Context{
		sampleRate: sampleRate,
		blockSize:  cfg.blockSize,
		logger:     cfg.logger,
		silence:    newSignal(1, cfg.blockSize),
	}

	c.dest = c.newUnit("destination", 1, 1, passThrough{})

	return c, nil
}

// SampleRate returns the sample rate in Hz.
func (c *Context) SampleRate() float64 { return c.sampleRate }

// BlockSize returns the render quantum in frames.
func (c *Context) BlockSize() int { return c.blockSize }

// CurrentTime returns the audio clock in seconds: the start of the next
// quantum to be rendered. Safe to call from any goroutine.
func (c *Context) CurrentTime() float64 {
	return float64(c.frames.Load()) / c.sampleRate
}

// Destination returns the unit whose input is the rendered output.
func (c *Context) Destination() *Unit { return c.dest }

// OnRender registers fn to run before every quantum with the quantum's start
// time. Hooks run outside the graph lock, so they may wire nodes and start
// sources.
func (c *Context) OnRender(fn func(now float64)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()

	c.hooks = append(c.hooks, fn)
}

// Atomically applies a batch of wiring changes while holding the graph lock.
// Changes made before fn returns an error are kept.
func (c *Context) Atomically(fn func(w *Wiring) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(&Wiring{ctx: c})
}

// RenderBlock renders one quantum and returns it as stereo. The returned
// signal is reused by the next call.
func (c *Context) RenderBlock() Signal {
	now := c.CurrentTime()

	c.hookMu.Lock()
	hooks := slices.Clone(c.hooks)
	c.hookMu.Unlock()

	for _, fn := range hooks {
		fn(now)
	}

	c.mu.Lock()

	c.stamp++
	c.blockStart = now

	c.dest.pull()

	for i := 0; i < len(c.running); i++ {
		c.running[i].pull()
	}

	c.pending = c.pending.resize(2, c.blockSize)
	c.pending.clear()
	c.pending.accumulate(c.dest.outputs[0])

	ended := c.retired
	c.retired = nil

	for _, u := range ended {
		c.logger.Debug("source ended", "unit", u.label, "id", u.id, "time", now)
		u.disconnectAll()
		c.running = slices.DeleteFunc(c.running, func(r *Unit) bool { return r == u })
	}

	c.frames.Add(int64(c.blockSize))
	c.mu.Unlock()

	for _, u := range ended {
		if s, ok := u.proc.(ender); ok {
			s.fireEnded()
		}
	}

	return c.pending
}

// Render fills dst with interleaved stereo float32 frames, rendering as
// many quanta as needed. Partial quanta are carried over to the next call.
// Render must not be called concurrently with itself or RenderBlock.
func (c *Context) Render(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		if c.pendingPos >= c.pending.Frames() {
			c.RenderBlock()
			c.pendingPos = 0
		}

		dst[i] = float32(c.pending[0][c.pendingPos])
		dst[i+1] = float32(c.pending[1][c.pendingPos])
		c.pendingPos++
	}
}

// startSource keeps u rendering every quantum. Caller holds mu.
func (c *Context) startSource(u *Unit) {
	if !slices.Contains(c.running, u) {
		c.running = append(c.running, u)
	}
}

// retire schedules u for detachment after the current quantum. Called from
// a processor while rendering.
func (c *Context) retire(u *Unit) {
	c.retired = append(c.retired, u)
}

// frameTime returns the context time of frame i in the current quantum.
func (c *Context) frameTime(i int) float64 {
	return c.blockStart + float64(i)/c.sampleRate
}
