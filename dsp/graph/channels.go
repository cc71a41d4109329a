package graph

import "fmt"

const maxChannels = 32

// ChannelSplitter routes channel i of its input to output port i. A mono
// input feeds every output.
type ChannelSplitter struct {
	*Unit
}

// NewChannelSplitter creates a splitter with n outputs.
func NewChannelSplitter(ctx *Context, n int) (*ChannelSplitter, error) {
	if n <= 0 || n > maxChannels {
		return nil, fmt.Errorf("%w: splitter outputs must be in [1, %d]: %d", ErrInvalidArgument, maxChannels, n)
	}

	s := &ChannelSplitter{}
	s.Unit = ctx.newUnit("splitter", 1, n, s)

	return s, nil
}

func (s *ChannelSplitter) process(u *Unit, in []Signal) {
	src := in[0]

	for port := range u.outputs {
		out := u.output(port, 1)[0]

		switch {
		case port < len(src):
			copy(out, src[port])
		case len(src) == 1:
			copy(out, src[0])
		default:
			clear(out)
		}
	}
}

// ChannelMerger combines its n inputs into one n-channel output. Each input
// is downmixed to mono first.
type ChannelMerger struct {
	*Unit
}

// NewChannelMerger creates a merger with n inputs.
func NewChannelMerger(ctx *Context, n int) (*ChannelMerger, error) {
	if n <= 0 || n > maxChannels {
		return nil, fmt.Errorf("%w: merger inputs must be in [1, %d]: %d", ErrInvalidArgument, maxChannels, n)
	}

	m := &ChannelMerger{}
	m.Unit = ctx.newUnit("merger", n, 1, m)

	return m, nil
}

func (m *ChannelMerger) process(u *Unit, in []Signal) {
	out := u.output(0, len(in))

	for ch, src := range in {
		src.downmix(out[ch])
	}
}
