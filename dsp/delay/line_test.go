package delay

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Fatalf("New(%d) expected error", size)
		}
	}
}

func newLine(t *testing.T, size int, writes ...float64) *Line {
	t.Helper()

	l, err := New(size)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, v := range writes {
		l.Write(v)
	}

	return l
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}

func TestRead(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		writes int
		delay  int
		want   float64
	}{
		{name: "newest", size: 8, writes: 8, delay: 0, want: 7},
		{name: "back three", size: 8, writes: 8, delay: 3, want: 4},
		{name: "wrapped newest", size: 4, writes: 10, delay: 0, want: 9},
		{name: "wrapped oldest", size: 4, writes: 10, delay: 3, want: 6},
		{name: "clamped past history", size: 4, writes: 10, delay: 40, want: 6},
		{name: "negative clamps to newest", size: 4, writes: 10, delay: -2, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLine(t, tt.size, ramp(tt.writes)...)
			if got := l.Read(tt.delay); got != tt.want {
				t.Fatalf("Read(%d) = %v, want %v", tt.delay, got, tt.want)
			}
		})
	}
}

func TestReadFractionalOnRamp(t *testing.T) {
	l := newLine(t, 16, ramp(16)...)

	for _, delay := range []float64{1, 2.5, 4.25, 7.75} {
		if got, want := l.ReadFractional(delay), 15-delay; math.Abs(got-want) > 1e-12 {
			t.Fatalf("ReadFractional(%v) = %v, want %v", delay, got, want)
		}
	}
}

func TestTapDelaysBlock(t *testing.T) {
	l := newLine(t, 32)

	src := ramp(16)
	delays := make([]float64, 16)
	for i := range delays {
		delays[i] = 4
	}

	dst := make([]float64, 16)
	l.Tap(dst, src, delays)

	for i, v := range dst {
		want := math.Max(0, float64(i-4))
		if v != want {
			t.Fatalf("dst[%d] = %v, want %v", i, v, want)
		}
	}

	// A nil source keeps the history draining.
	l.Tap(dst[:4], nil, delays)

	for i, want := range []float64{12, 13, 14, 15} {
		if dst[i] != want {
			t.Fatalf("drain dst[%d] = %v, want %v", i, dst[i], want)
		}
	}
}
