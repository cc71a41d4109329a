// Package conv provides the convolution routines behind the graph convolver.
//
// Two strategies are offered:
//
//   - Direct: simple O(N*M) time-domain convolution, used for short kernels
//     and as the reference implementation in tests
//   - Partitioned: streaming uniformly partitioned FFT convolution for long
//     impulse responses, producing each output block without added latency
//
// # Usage
//
//	p, err := conv.NewPartitioned(impulse, 128)
//	err = p.ProcessBlockTo(out, in)
package conv

import (
	"errors"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput       = errors.New("conv: empty input")
	ErrEmptyKernel      = errors.New("conv: empty kernel")
	ErrLengthMismatch   = errors.New("conv: buffer length mismatch")
	ErrInvalidBlockSize = errors.New("conv: invalid block size")
)

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}

	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	m := len(b)
	result := make([]float64, len(a)+m-1)
	temp := make([]float64, m)

	for i, av := range a {
		if av == 0 {
			continue
		}

		vecmath.ScaleBlock(temp, b, av)
		vecmath.AddBlockInPlace(result[i:i+m], temp)
	}

	return result, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
