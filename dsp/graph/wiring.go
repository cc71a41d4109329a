package graph

import (
	"fmt"
	"slices"
)

// Wiring applies graph changes while the context lock is held. It is only
// valid inside the function passed to [Context.Atomically].
type Wiring struct {
	ctx *Context
}

// Connect chains nodes pairwise, output port 0 to input port 0.
func (w *Wiring) Connect(nodes ...Node) error {
	for i, n := range nodes {
		in, out := n.Input(), n.Output()
		if err := w.own(in); err != nil {
			return err
		}

		if err := w.own(out); err != nil {
			return err
		}

		if i > 0 && len(in.inputs) == 0 {
			return fmt.Errorf("%w: %s has no inputs", ErrInvalidPort, in.label)
		}

		if i < len(nodes)-1 && len(out.outputs) == 0 {
			return fmt.Errorf("%w: %s has no outputs", ErrInvalidPort, out.label)
		}
	}

	for i := 1; i < len(nodes); i++ {
		if err := w.ConnectPorts(nodes[i-1].Output(), 0, nodes[i].Input(), 0); err != nil {
			return err
		}
	}

	return nil
}

// ConnectPorts connects one output port of src to one input port of dst.
// Connecting the same ports twice is a no-op.
func (w *Wiring) ConnectPorts(src *Unit, srcPort int, dst *Unit, dstPort int) error {
	if err := w.own(src); err != nil {
		return err
	}

	if err := w.own(dst); err != nil {
		return err
	}

	if srcPort < 0 || srcPort >= len(src.outputs) {
		return fmt.Errorf("%w: %s has no output %d", ErrInvalidPort, src.label, srcPort)
	}

	if dstPort < 0 || dstPort >= len(dst.inputs) {
		return fmt.Errorf("%w: %s has no input %d", ErrInvalidPort, dst.label, dstPort)
	}

	e := Edge{From: src, FromPort: srcPort, To: dst, ToPort: dstPort}
	if slices.Contains(src.edges, e) {
		return nil
	}

	src.edges = append(src.edges, e)
	in := dst.inputs[dstPort]
	in.sources = append(in.sources, source{unit: src, port: srcPort})

	return nil
}

// Modulate routes the output of src into p. The signal is downmixed to mono
// and added to p's intrinsic or automated value.
func (w *Wiring) Modulate(src Node, p *Param) error {
	if p == nil {
		return fmt.Errorf("%w: nil param", ErrInvalidArgument)
	}

	out := src.Output()
	if err := w.own(out); err != nil {
		return err
	}

	if err := w.own(p.owner); err != nil {
		return err
	}

	e := Edge{From: out, To: p.owner, Param: p}
	if slices.Contains(out.edges, e) {
		return nil
	}

	out.edges = append(out.edges, e)
	p.sources = append(p.sources, source{unit: out})

	return nil
}

// Disconnect removes every edge leaving n's output unit, including
// modulation edges.
func (w *Wiring) Disconnect(n Node) {
	n.Output().disconnectAll()
}

func (w *Wiring) own(u *Unit) error {
	if u == nil {
		return fmt.Errorf("%w: nil unit", ErrInvalidArgument)
	}

	if u.ctx != w.ctx {
		return fmt.Errorf("%w: %s #%d", ErrForeignNode, u.label, u.id)
	}

	return nil
}

// Connect chains nodes pairwise (output of each into input of the next) as
// one atomic change.
func Connect(nodes ...Node) error {
	if len(nodes) == 0 {
		return nil
	}

	return nodes[0].Output().ctx.Atomically(func(w *Wiring) error {
		return w.Connect(nodes...)
	})
}

// ConnectPorts connects output srcPort of src to input dstPort of dst.
func ConnectPorts(src *Unit, srcPort int, dst *Unit, dstPort int) error {
	return src.ctx.Atomically(func(w *Wiring) error {
		return w.ConnectPorts(src, srcPort, dst, dstPort)
	})
}

// Modulate routes src into the control parameter p.
func Modulate(src Node, p *Param) error {
	return src.Output().ctx.Atomically(func(w *Wiring) error {
		return w.Modulate(src, p)
	})
}

// Disconnect removes every edge leaving n's output.
func Disconnect(n Node) {
	_ = n.Output().ctx.Atomically(func(w *Wiring) error {
		w.Disconnect(n)
		return nil
	})
}
