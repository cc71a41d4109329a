package graph

import (
	"fmt"
	"math"
)

// Composite is the two-port shell shared by effects built from several
// units: signal enters at an input gain and leaves at an output gain.
type Composite struct {
	ctx *Context
	in  *Gain
	out *Gain
}

// NewComposite creates unconnected unity input and output gains.
func NewComposite(ctx *Context) (*Composite, error) {
	in, err := NewGain(ctx, 1)
	if err != nil {
		return nil, err
	}

	out, err := NewGain(ctx, 1)
	if err != nil {
		return nil, err
	}

	return &Composite{ctx: ctx, in: in, out: out}, nil
}

// Input returns the entry unit.
func (c *Composite) Input() *Unit { return c.in.Unit }

// Output returns the exit unit.
func (c *Composite) Output() *Unit { return c.out.Unit }

// Context returns the owning context.
func (c *Composite) Context() *Context { return c.ctx }

// MixNode is a Composite with a dry path (input to output at 1-mix) and a
// wet return gain at mix. Effects feed their processed signal into WetMix.
type MixNode struct {
	*Composite
	dry *Gain
	wet *Gain
}

// NewMixNode creates a mix node with the wet proportion mix in [0, 1].
func NewMixNode(ctx *Context, mix float64) (*MixNode, error) {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return nil, fmt.Errorf("%w: mix must be in [0, 1]: %f", ErrInvalidArgument, mix)
	}

	c, err := NewComposite(ctx)
	if err != nil {
		return nil, err
	}

	dry, err := NewGain(ctx, 1-mix)
	if err != nil {
		return nil, err
	}

	wet, err := NewGain(ctx, mix)
	if err != nil {
		return nil, err
	}

	m := &MixNode{Composite: c, dry: dry, wet: wet}

	err = ctx.Atomically(func(w *Wiring) error {
		if err := w.Connect(c.in, dry, c.out); err != nil {
			return err
		}

		return w.Connect(wet, c.out)
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// WetMix returns the wet return gain.
func (m *MixNode) WetMix() *Gain { return m.wet }

// DryMix returns the dry path gain.
func (m *MixNode) DryMix() *Gain { return m.dry }

// SetMix sets the wet proportion, keeping dry at 1-mix.
func (m *MixNode) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("%w: mix must be in [0, 1]: %f", ErrInvalidArgument, mix)
	}

	if err := m.wet.Gain().SetValue(mix); err != nil {
		return err
	}

	return m.dry.Gain().SetValue(1 - mix)
}
