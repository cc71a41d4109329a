package effectchain

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/cwbudde/algo-menagerie/dsp/effects/modulation"
	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger for chain changes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Edge is one hop of the live serial path, in effect names.
type Edge struct {
	From Name
	To   Name
}

// Chain owns the effect pool and the global input and output it is wired
// between. It satisfies graph.Node, so voices connect to it like any unit.
type Chain struct {
	ctx    *graph.Context
	logger *slog.Logger

	input  *graph.Gain
	output *graph.Gain
	nodes  map[Name]graph.Node
	nested *modulation.NestedAM

	mu      sync.Mutex
	current []Name
}

// New builds every effect registered in registry and starts in
// passthrough. When the pool has an AM effect its modulator frequency is
// itself driven by a nested LFO and AM stage.
func New(ctx *graph.Context, registry *Registry, opts ...Option) (*Chain, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: nil registry", graph.ErrInvalidArgument)
	}

	c := &Chain{
		ctx:    ctx,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		nodes:  make(map[Name]graph.Node),
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	if c.input, err = graph.NewGain(ctx, 1); err != nil {
		return nil, err
	}

	if c.output, err = graph.NewGain(ctx, 1); err != nil {
		return nil, err
	}

	for _, name := range registry.Registered() {
		node, err := registry.Lookup(name)(ctx)
		if err != nil {
			return nil, fmt.Errorf("effectchain: build %s: %w", name, err)
		}

		c.nodes[name] = node
	}

	if am, ok := c.nodes[AM].(*modulation.AM); ok {
		if c.nested, err = modulation.NewNestedAM(ctx, am); err != nil {
			return nil, fmt.Errorf("effectchain: nested modulation: %w", err)
		}
	}

	if err := c.ConnectNodes(nil); err != nil {
		return nil, err
	}

	return c, nil
}

// Input returns the global input unit.
func (c *Chain) Input() *graph.Unit { return c.input.Unit }

// Output returns the global output unit.
func (c *Chain) Output() *graph.Unit { return c.output.Unit }

// Node returns the pool instance for name.
func (c *Chain) Node(name Name) (graph.Node, bool) {
	n, ok := c.nodes[name]

	return n, ok
}

// Nested returns the modulation stage driving the AM effect's modulator,
// or nil when the pool has no AM.
func (c *Chain) Nested() *modulation.NestedAM { return c.nested }

// ConnectNodes rewires the chain to input → names[0] → … → output. An
// empty list connects input straight to output. A name may repeat, which
// feeds that instance into itself. Unknown names fail with a
// *ConfigurationError before any edge is touched.
func (c *Chain) ConnectNodes(chain []Name) error {
	nodes := make([]graph.Node, 0, len(chain)+2)
	nodes = append(nodes, c.input)

	for i, name := range chain {
		n, ok := c.nodes[name]
		if !ok {
			return &ConfigurationError{Name: string(name), Position: i, Err: ErrUnknownEffect}
		}

		nodes = append(nodes, n)
	}

	nodes = append(nodes, c.output)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && slices.Equal(c.current, chain) {
		return nil
	}

	err := c.ctx.Atomically(func(w *graph.Wiring) error {
		w.Disconnect(c.input)

		for _, n := range c.nodes {
			w.Disconnect(n)
		}

		return w.Connect(nodes...)
	})
	if err != nil {
		return fmt.Errorf("effectchain: connect: %w", err)
	}

	c.current = append(make([]Name, 0, len(chain)), chain...)
	c.logger.Debug("effect chain connected", "chain", c.current)

	return nil
}

// ConnectNames parses ss and connects the result.
func (c *Chain) ConnectNames(ss []string) error {
	chain, err := ParseNames(ss)
	if err != nil {
		return err
	}

	return c.ConnectNodes(chain)
}

// Current returns the active chain.
func (c *Chain) Current() []Name {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.current)
}

// Edges reports the live edges between the global endpoints and the pool,
// read back from the graph. Internal edges of composites are not included.
func (c *Chain) Edges() []Edge {
	byInput := map[*graph.Unit]Name{c.output.Unit: OutputName}
	for name, n := range c.nodes {
		byInput[n.Input()] = name
	}

	var edges []Edge

	collect := func(from Name, u *graph.Unit) {
		for _, dst := range u.Destinations() {
			if to, ok := byInput[dst]; ok {
				edges = append(edges, Edge{From: from, To: to})
			}
		}
	}

	collect(InputName, c.input.Unit)

	for _, name := range names {
		if n, ok := c.nodes[name]; ok {
			collect(name, n.Output())
		}
	}

	return edges
}
