package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Partitioned implements streaming convolution with a uniformly partitioned
// kernel (overlap-save over a frequency-domain delay line).
//
// The kernel is split into partitions of blockSize samples. Each input block
// is transformed once and multiplied against every partition spectrum, so the
// cost per block grows linearly with the kernel length while each output
// block depends only on the current and earlier inputs.
type Partitioned struct {
	kernelLen int
	blockSize int
	fftSize   int // 2*blockSize rounded to a power of 2

	plan *algofft.Plan[complex128]

	// Kernel partitions in frequency domain.
	partitions [][]complex128

	// Frequency-domain delay line of past input spectra, newest at head.
	fdl  [][]complex128
	head int

	prev    []float64 // previous input block (overlap-save history)
	scratch []complex128
	acc     []complex128
}

// NewPartitioned creates a streaming partitioned convolver.
// blockSize is the fixed size of input and output blocks.
func NewPartitioned(kernel []float64, blockSize int) (*Partitioned, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}

	fftSize := nextPowerOf2(2 * blockSize)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	count := (len(kernel) + blockSize - 1) / blockSize

	p := &Partitioned{
		kernelLen:  len(kernel),
		blockSize:  blockSize,
		fftSize:    fftSize,
		plan:       plan,
		partitions: make([][]complex128, count),
		fdl:        make([][]complex128, count),
		prev:       make([]float64, fftSize-blockSize),
		scratch:    make([]complex128, fftSize),
		acc:        make([]complex128, fftSize),
	}

	for k := range count {
		clear(p.scratch)

		start := k * blockSize
		end := min(start+blockSize, len(kernel))

		for i, v := range kernel[start:end] {
			p.scratch[i] = complex(v, 0)
		}

		p.partitions[k] = make([]complex128, fftSize)
		if err := plan.Forward(p.partitions[k], p.scratch); err != nil {
			return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
		}

		p.fdl[k] = make([]complex128, fftSize)
	}

	return p, nil
}

// ProcessBlockTo convolves input block and writes to pre-allocated output.
// Both input and output must be of size blockSize.
func (p *Partitioned) ProcessBlockTo(output, input []float64) error {
	if len(input) != p.blockSize {
		return fmt.Errorf("%w: expected %d input samples, got %d", ErrLengthMismatch, p.blockSize, len(input))
	}

	if len(output) != p.blockSize {
		return fmt.Errorf("%w: expected %d output samples, got %d", ErrLengthMismatch, p.blockSize, len(output))
	}

	// Window is [history | current block].
	hist := len(p.prev)
	for i, v := range p.prev {
		p.scratch[i] = complex(v, 0)
	}

	for i, v := range input {
		p.scratch[hist+i] = complex(v, 0)
	}

	p.head--
	if p.head < 0 {
		p.head = len(p.fdl) - 1
	}

	if err := p.plan.Forward(p.fdl[p.head], p.scratch); err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	clear(p.acc)

	for k, h := range p.partitions {
		x := p.fdl[(p.head+k)%len(p.fdl)]
		for i := range p.acc {
			p.acc[i] += x[i] * h[i]
		}
	}

	if err := p.plan.Inverse(p.scratch, p.acc); err != nil {
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	for i := range output {
		output[i] = real(p.scratch[hist+i])
	}

	// Slide history: keep the most recent hist samples.
	if hist > p.blockSize {
		copy(p.prev, p.prev[p.blockSize:])
		copy(p.prev[hist-p.blockSize:], input)
	} else {
		copy(p.prev, input[p.blockSize-hist:])
	}

	return nil
}

// Reset clears the input history and the frequency-domain delay line.
func (p *Partitioned) Reset() {
	clear(p.prev)

	for _, x := range p.fdl {
		clear(x)
	}

	p.head = 0
}

// BlockSize returns the block size.
func (p *Partitioned) BlockSize() int {
	return p.blockSize
}

// KernelLen returns the kernel length.
func (p *Partitioned) KernelLen() int {
	return p.kernelLen
}

// Partitions returns the number of kernel partitions.
func (p *Partitioned) Partitions() int {
	return len(p.partitions)
}
