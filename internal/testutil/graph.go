package testutil

import (
	"testing"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

// Context returns a 48 kHz render context with 128-frame quanta.
func Context(t *testing.T) *graph.Context {
	t.Helper()

	ctx, err := graph.NewContext(48000)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	return ctx
}

// Buffer wraps channel data at the context's sample rate.
func Buffer(t *testing.T, ctx *graph.Context, channels ...[]float64) *graph.Buffer {
	t.Helper()

	buf, err := graph.NewBuffer(ctx.SampleRate(), channels)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	return buf
}

// Source returns a buffer source playing channels from time zero.
func Source(t *testing.T, ctx *graph.Context, channels ...[]float64) *graph.BufferSource {
	t.Helper()

	src, err := graph.NewBufferSource(ctx, Buffer(t, ctx, channels...))
	if err != nil {
		t.Fatalf("NewBufferSource() error = %v", err)
	}

	if err := src.Start(0, 0, 0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	return src
}

// Render renders quanta blocks and returns the concatenated left and right
// channels.
func Render(ctx *graph.Context, quanta int) (left, right []float64) {
	for range quanta {
		out := ctx.RenderBlock()
		left = append(left, out[0]...)
		right = append(right, out[1]...)
	}

	return left, right
}
