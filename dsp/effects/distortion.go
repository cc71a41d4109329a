package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

const (
	defaultDistortionCurveSize = 2048
	defaultDistortionMix       = 1.0

	minDistortionCurveSize = 2
	maxDistortionCurveSize = 1 << 16
	distortionDriveScale   = 100
)

// DistortionOption mutates construction-time parameters.
type DistortionOption func(*distortionConfig) error

type distortionConfig struct {
	curveSize int
	mix       float64
}

// WithDistortionCurveSize sets the number of points in the shaping curve.
func WithDistortionCurveSize(n int) DistortionOption {
	return func(cfg *distortionConfig) error {
		if n < minDistortionCurveSize || n > maxDistortionCurveSize {
			return fmt.Errorf("distortion curve size must be in [%d, %d]: %d",
				minDistortionCurveSize, maxDistortionCurveSize, n)
		}

		cfg.curveSize = n

		return nil
	}
}

// WithDistortionMix sets the wet proportion in [0, 1].
func WithDistortionMix(mix float64) DistortionOption {
	return func(cfg *distortionConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("distortion mix must be in [0, 1]: %f", mix)
		}

		cfg.mix = mix

		return nil
	}
}

// Distortion is a soft-clipping waveshaper on the wet path of a mix node.
type Distortion struct {
	*graph.MixNode

	amount float64
	shaper *graph.WaveShaper
}

// NewDistortion creates a distortion whose drive grows with amount (>= 0).
func NewDistortion(ctx *graph.Context, amount float64, opts ...DistortionOption) (*Distortion, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("distortion amount must be >= 0 and finite: %f", amount)
	}

	cfg := distortionConfig{curveSize: defaultDistortionCurveSize, mix: defaultDistortionMix}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	node, err := graph.NewMixNode(ctx, cfg.mix)
	if err != nil {
		return nil, err
	}

	shaper, err := graph.NewWaveShaper(ctx, DistortionCurve(amount, cfg.curveSize))
	if err != nil {
		return nil, err
	}

	if err := graph.Connect(node.Input(), shaper, node.WetMix()); err != nil {
		return nil, err
	}

	return &Distortion{MixNode: node, amount: amount, shaper: shaper}, nil
}

// Amount returns the drive amount.
func (d *Distortion) Amount() float64 { return d.amount }

// Shaper returns the waveshaper unit.
func (d *Distortion) Shaper() *graph.WaveShaper { return d.shaper }

// DistortionCurve samples the soft-clip transfer function
//
//	f(x) = (3 + k) * x * 20deg / (pi + k*|x|),  k = amount*100
//
// at n points over [-1, 1].
func DistortionCurve(amount float64, n int) []float64 {
	k := amount * distortionDriveScale
	deg := math.Pi / 180
	curve := make([]float64, n)

	for i := range curve {
		x := float64(i)*2/float64(n-1) - 1
		curve[i] = (3 + k) * x * 20 * deg / (math.Pi + k*math.Abs(x))
	}

	return curve
}
