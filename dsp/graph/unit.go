package graph

import "slices"

// Node is anything with a signal entry and exit unit. Every *Unit is a Node;
// composites return their internal input and output units.
type Node interface {
	Input() *Unit
	Output() *Unit
}

// processor renders one quantum for a unit. Inputs are read-only; results
// go to u.outputs.
type processor interface {
	process(u *Unit, in []Signal)
}

// ender is implemented by processors that report completion.
type ender interface {
	fireEnded()
}

// Edge describes one connection leaving a unit. Param is set for
// modulation edges, in which case ToPort is unused.
type Edge struct {
	From     *Unit
	FromPort int
	To       *Unit
	ToPort   int
	Param    *Param
}

type source struct {
	unit *Unit
	port int
}

type inputPort struct {
	sources []source
	mix     Signal
}

// Unit is a primitive processing element with indexed signal ports and
// named control parameters.
type Unit struct {
	ctx   *Context
	id    int64
	label string
	proc  processor

	inputs  []*inputPort
	outputs []Signal
	params  []*Param
	edges   []Edge
	gather  []Signal

	stamp int64
}

func (c *Context) newUnit(label string, inputs, outputs int, proc processor) *Unit {
	u := &Unit{
		ctx:     c,
		id:      c.nextID.Add(1),
		label:   label,
		proc:    proc,
		inputs:  make([]*inputPort, inputs),
		outputs: make([]Signal, outputs),
		gather:  make([]Signal, inputs),
	}

	for i := range u.inputs {
		u.inputs[i] = &inputPort{}
	}

	for i := range u.outputs {
		u.outputs[i] = newSignal(1, c.blockSize)
	}

	return u
}

// Input returns u.
func (u *Unit) Input() *Unit { return u }

// Output returns u.
func (u *Unit) Output() *Unit { return u }

// ID returns the unit's identifier, unique within its context.
func (u *Unit) ID() int64 { return u.id }

// Label returns the unit's kind, e.g. "gain" or "delay".
func (u *Unit) Label() string { return u.label }

// Context returns the owning context.
func (u *Unit) Context() *Context { return u.ctx }

// NumInputs returns the number of input ports.
func (u *Unit) NumInputs() int { return len(u.inputs) }

// NumOutputs returns the number of output ports.
func (u *Unit) NumOutputs() int { return len(u.outputs) }

// Params returns the unit's control parameters.
func (u *Unit) Params() []*Param { return slices.Clone(u.params) }

// Edges returns a snapshot of the connections leaving u.
func (u *Unit) Edges() []Edge {
	u.ctx.mu.Lock()
	defer u.ctx.mu.Unlock()

	return slices.Clone(u.edges)
}

// Destinations returns the distinct units fed by u's signal outputs.
func (u *Unit) Destinations() []*Unit {
	u.ctx.mu.Lock()
	defer u.ctx.mu.Unlock()

	var out []*Unit

	for _, e := range u.edges {
		if e.Param == nil && !slices.Contains(out, e.To) {
			out = append(out, e.To)
		}
	}

	return out
}

// Sources returns the distinct units feeding any of u's input ports.
func (u *Unit) Sources() []*Unit {
	u.ctx.mu.Lock()
	defer u.ctx.mu.Unlock()

	var out []*Unit

	for _, in := range u.inputs {
		for _, s := range in.sources {
			if !slices.Contains(out, s.unit) {
				out = append(out, s.unit)
			}
		}
	}

	return out
}

func (u *Unit) addParam(p *Param) *Param {
	u.params = append(u.params, p)
	return p
}

// output returns output port i shaped to channels, ready to be overwritten.
func (u *Unit) output(i, channels int) Signal {
	u.outputs[i] = u.outputs[i].resize(channels, u.ctx.blockSize)
	return u.outputs[i]
}

// pull renders u for the current quantum unless it already has. A unit
// pulled again while rendering keeps its previous output, which is what
// closes feedback loops.
func (u *Unit) pull() {
	c := u.ctx
	if u.stamp == c.stamp {
		return
	}

	u.stamp = c.stamp

	for i, in := range u.inputs {
		u.gather[i] = in.resolve(c, u)
	}

	for _, p := range u.params {
		p.render()
	}

	u.proc.process(u, u.gather)
}

// resolve returns the summed signal at an input port of owner. A single
// source is returned by reference unless it is owner itself.
func (in *inputPort) resolve(c *Context, owner *Unit) Signal {
	switch len(in.sources) {
	case 0:
		return c.silence
	case 1:
		s := in.sources[0]
		s.unit.pull()

		if s.unit != owner {
			return s.unit.outputs[s.port]
		}
	}

	channels := 1

	for _, s := range in.sources {
		s.unit.pull()
		channels = max(channels, s.unit.outputs[s.port].Channels())
	}

	in.mix = in.mix.resize(channels, c.blockSize)
	in.mix.clear()

	for _, s := range in.sources {
		in.mix.accumulate(s.unit.outputs[s.port])
	}

	return in.mix
}

// disconnectAll removes every edge leaving u. Caller holds mu.
func (u *Unit) disconnectAll() {
	for _, e := range u.edges {
		detach(e)
	}

	u.edges = u.edges[:0]
}

func detach(e Edge) {
	match := func(s source) bool { return s.unit == e.From && s.port == e.FromPort }

	if e.Param != nil {
		e.Param.sources = slices.DeleteFunc(e.Param.sources, match)
		return
	}

	in := e.To.inputs[e.ToPort]
	in.sources = slices.DeleteFunc(in.sources, match)
}

// passThrough copies its single input to its single output.
type passThrough struct{}

func (passThrough) process(u *Unit, in []Signal) {
	out := u.output(0, in[0].Channels())
	for ch := range out {
		copy(out[ch], in[0][ch])
	}
}
