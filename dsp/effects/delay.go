package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

const (
	defaultDelayTime     = 0.25
	defaultDelayFeedback = 0.35
	defaultDelayMix      = 0.25
	maxDelayTime         = 5.0
)

// FeedbackDelayOption mutates construction-time parameters.
type FeedbackDelayOption func(*feedbackDelayConfig) error

type feedbackDelayConfig struct {
	time     float64
	feedback float64
	mix      float64
}

// WithDelayTime sets the echo spacing in seconds.
func WithDelayTime(seconds float64) FeedbackDelayOption {
	return func(cfg *feedbackDelayConfig) error {
		if seconds <= 0 || seconds > maxDelayTime || math.IsNaN(seconds) {
			return fmt.Errorf("delay time must be in (0, %f]: %f", maxDelayTime, seconds)
		}

		cfg.time = seconds

		return nil
	}
}

// WithDelayFeedback sets the loop gain in [0, 1).
func WithDelayFeedback(feedback float64) FeedbackDelayOption {
	return func(cfg *feedbackDelayConfig) error {
		if feedback < 0 || feedback >= 1 || math.IsNaN(feedback) {
			return fmt.Errorf("delay feedback must be in [0, 1): %f", feedback)
		}

		cfg.feedback = feedback

		return nil
	}
}

// WithDelayMix sets the wet proportion in [0, 1].
func WithDelayMix(mix float64) FeedbackDelayOption {
	return func(cfg *feedbackDelayConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("delay mix must be in [0, 1]: %f", mix)
		}

		cfg.mix = mix

		return nil
	}
}

// FeedbackDelay is an echo: a delay whose output is fed back into its own
// input through a gain, forming a graph cycle.
type FeedbackDelay struct {
	*graph.MixNode

	delay    *graph.Delay
	feedback *graph.Gain
}

// NewFeedbackDelay creates an echo with 0.25 s spacing, 0.35 feedback and
// 0.25 mix unless overridden.
func NewFeedbackDelay(ctx *graph.Context, opts ...FeedbackDelayOption) (*FeedbackDelay, error) {
	cfg := feedbackDelayConfig{
		time:     defaultDelayTime,
		feedback: defaultDelayFeedback,
		mix:      defaultDelayMix,
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	node, err := graph.NewMixNode(ctx, cfg.mix)
	if err != nil {
		return nil, err
	}

	delay, err := graph.NewDelay(ctx, maxDelayTime, cfg.time)
	if err != nil {
		return nil, err
	}

	feedback, err := graph.NewGain(ctx, cfg.feedback)
	if err != nil {
		return nil, err
	}

	err = ctx.Atomically(func(w *graph.Wiring) error {
		if err := w.Connect(node.Input(), delay, node.WetMix()); err != nil {
			return err
		}

		return w.Connect(delay, feedback, delay)
	})
	if err != nil {
		return nil, err
	}

	return &FeedbackDelay{MixNode: node, delay: delay, feedback: feedback}, nil
}

// Delay returns the delay unit.
func (f *FeedbackDelay) Delay() *graph.Delay { return f.delay }

// Feedback returns the loop gain.
func (f *FeedbackDelay) Feedback() *graph.Gain { return f.feedback }
