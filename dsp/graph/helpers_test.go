package graph

import (
	"math"
	"testing"
)

const testSampleRate = 48000

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()

	ctx, err := NewContext(testSampleRate, append([]Option{WithBlockSize(64)}, opts...)...)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	return ctx
}

// constSource returns a started mono source that outputs value for frames.
func constSource(t *testing.T, ctx *Context, value float64, frames int) *BufferSource {
	t.Helper()

	data := make([]float64, frames)
	for i := range data {
		data[i] = value
	}

	buf, err := NewBuffer(ctx.SampleRate(), [][]float64{data})
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	src, err := NewBufferSource(ctx, buf)
	if err != nil {
		t.Fatalf("NewBufferSource() error = %v", err)
	}

	if err := src.Start(0, 0, 0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	return src
}

func mustGain(t *testing.T, ctx *Context, value float64) *Gain {
	t.Helper()

	g, err := NewGain(ctx, value)
	if err != nil {
		t.Fatalf("NewGain() error = %v", err)
	}

	return g
}

func mustConnect(t *testing.T, nodes ...Node) {
	t.Helper()

	if err := Connect(nodes...); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
}

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()

	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (tol %g)", name, got, want, tol)
	}
}
