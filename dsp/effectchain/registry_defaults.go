package effectchain

import (
	"github.com/cwbudde/algo-menagerie/dsp/effects"
	"github.com/cwbudde/algo-menagerie/dsp/effects/modulation"
	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

const (
	chorusRate      = 0.5
	chorusDepthMS   = 5
	multiplierMix   = 0.4
	tremoloRate     = 5
	tremoloDepth    = 0.3
	distortionDrive = 1.5
	reverbMix       = 0.3
	amFrequency     = 2000
	amDepth         = 1
)

// RegistryOption configures DefaultRegistry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	impulse *graph.Buffer
}

// WithImpulse sets the reverb impulse response. Without it the reverb
// falls back to a synthetic tail.
func WithImpulse(impulse *graph.Buffer) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.impulse = impulse
	}
}

// DefaultRegistry returns a registry with the full built-in effect pool.
func DefaultRegistry(opts ...RegistryOption) *Registry {
	var cfg registryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r := NewRegistry()

	r.MustRegister(Chorus, func(ctx *graph.Context) (graph.Node, error) {
		return modulation.NewStereoChorus(ctx, chorusRate, chorusDepthMS)
	})
	r.MustRegister(Multiplier, func(ctx *graph.Context) (graph.Node, error) {
		return modulation.NewMultiplier(ctx, multiplierMix)
	})
	r.MustRegister(Tremolo, func(ctx *graph.Context) (graph.Node, error) {
		return modulation.NewTremolo(ctx, tremoloRate, tremoloDepth)
	})
	r.MustRegister(Distortion, func(ctx *graph.Context) (graph.Node, error) {
		return effects.NewDistortion(ctx, distortionDrive)
	})
	r.MustRegister(Delay, func(ctx *graph.Context) (graph.Node, error) {
		return effects.NewFeedbackDelay(ctx)
	})
	r.MustRegister(Reverb, func(ctx *graph.Context) (graph.Node, error) {
		return effects.NewReverb(ctx, reverbMix, cfg.impulse)
	})
	r.MustRegister(Compressor, func(ctx *graph.Context) (graph.Node, error) {
		return graph.NewDynamicsCompressor(ctx), nil
	})
	r.MustRegister(AM, func(ctx *graph.Context) (graph.Node, error) {
		return modulation.NewAM(ctx, amFrequency, amDepth, 0)
	})

	return r
}
