package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
	"github.com/cwbudde/algo-menagerie/internal/testutil"
)

func TestDistortionCurve(t *testing.T) {
	linear := DistortionCurve(0, 5)
	testutil.RequireSliceNearlyEqual(t, linear, []float64{-1.0 / 3, -1.0 / 6, 0, 1.0 / 6, 1.0 / 3}, 1e-12)

	curve := DistortionCurve(0.5, 2048)
	if len(curve) != 2048 {
		t.Fatalf("len = %d, want 2048", len(curve))
	}

	for i := 1; i < len(curve); i++ {
		if curve[i] < curve[i-1] {
			t.Fatalf("curve not monotonic at %d: %v < %v", i, curve[i], curve[i-1])
		}
	}

	for i := range curve {
		testutil.RequireNear(t, "odd symmetry", curve[i], -curve[len(curve)-1-i], 1e-12)
	}
}

func TestDistortionRender(t *testing.T) {
	ctx := testutil.Context(t)

	dist, err := NewDistortion(ctx, 0)
	if err != nil {
		t.Fatalf("NewDistortion() error = %v", err)
	}

	src := testutil.Source(t, ctx, testutil.DC(0.6, 512))
	if err := graph.Connect(src, dist, ctx.Destination()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	left, right := testutil.Render(ctx, 2)
	for i := range left {
		testutil.RequireNear(t, "left", left[i], 0.2, 1e-9)
		testutil.RequireNear(t, "right", right[i], 0.2, 1e-9)
	}
}

func TestDistortionOptions(t *testing.T) {
	ctx := testutil.Context(t)

	tests := []struct {
		name    string
		amount  float64
		opts    []DistortionOption
		wantErr bool
	}{
		{name: "defaults", amount: 0.4},
		{name: "custom", amount: 1, opts: []DistortionOption{WithDistortionCurveSize(256), WithDistortionMix(0.5)}},
		{name: "negative amount", amount: -1, wantErr: true},
		{name: "nan amount", amount: math.NaN(), wantErr: true},
		{name: "tiny curve", amount: 1, opts: []DistortionOption{WithDistortionCurveSize(1)}, wantErr: true},
		{name: "mix out of range", amount: 1, opts: []DistortionOption{WithDistortionMix(1.5)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDistortion(ctx, tt.amount, tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDistortion() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && d.Amount() != tt.amount {
				t.Fatalf("Amount() = %v, want %v", d.Amount(), tt.amount)
			}
		})
	}
}

func TestFeedbackDelayEchoes(t *testing.T) {
	ctx := testutil.Context(t)

	echo, err := NewFeedbackDelay(ctx, WithDelayTime(0.01), WithDelayFeedback(0.5), WithDelayMix(0.5))
	if err != nil {
		t.Fatalf("NewFeedbackDelay() error = %v", err)
	}

	src := testutil.Source(t, ctx, []float64{1})
	if err := graph.Connect(src, echo, ctx.Destination()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	left, _ := testutil.Render(ctx, 20)
	spacing := int(0.01 * ctx.SampleRate())

	testutil.RequireNear(t, "dry", left[0], 0.5, 1e-9)
	testutil.RequireNear(t, "first echo", left[spacing], 0.5, 1e-9)

	for i := 1; i < spacing; i++ {
		if math.Abs(left[i]) > 1e-9 {
			t.Fatalf("unexpected energy at %d: %v", i, left[i])
		}
	}

	// The repeat travels the loop once more, so it lands one quantum late.
	second := testutil.Peak(left[2*spacing : 2*spacing+2*ctx.BlockSize()])
	testutil.RequireNear(t, "second echo", second, 0.25, 1e-9)
	testutil.RequireFinite(t, left)
}

func TestFeedbackDelayTopology(t *testing.T) {
	ctx := testutil.Context(t)

	echo, err := NewFeedbackDelay(ctx)
	if err != nil {
		t.Fatalf("NewFeedbackDelay() error = %v", err)
	}

	testutil.RequireNear(t, "delay time", echo.Delay().DelayTime().Value(), defaultDelayTime, 0)
	testutil.RequireNear(t, "feedback", echo.Feedback().Gain().Value(), defaultDelayFeedback, 0)
	testutil.RequireNear(t, "mix", echo.WetMix().Gain().Value(), defaultDelayMix, 0)

	found := false
	for _, dst := range echo.Feedback().Destinations() {
		if dst == echo.Delay().Unit {
			found = true
		}
	}

	if !found {
		t.Fatal("feedback gain does not feed the delay")
	}

	for _, opt := range []FeedbackDelayOption{WithDelayTime(0), WithDelayFeedback(1), WithDelayMix(-0.1)} {
		if _, err := NewFeedbackDelay(ctx, opt); err == nil {
			t.Fatal("NewFeedbackDelay() expected error")
		}
	}
}

func TestReverbIdentityImpulse(t *testing.T) {
	ctx := testutil.Context(t)
	impulse := testutil.Buffer(t, ctx, []float64{1})

	rev, err := NewReverb(ctx, 1, impulse)
	if err != nil {
		t.Fatalf("NewReverb() error = %v", err)
	}

	input := testutil.DeterministicSine(440, ctx.SampleRate(), 0.5, 512)
	src := testutil.Source(t, ctx, input)

	if err := graph.Connect(src, rev, ctx.Destination()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	left, right := testutil.Render(ctx, 4)
	testutil.RequireSliceNearlyEqual(t, left, input, 1e-9)
	testutil.RequireSliceNearlyEqual(t, right, input, 1e-9)
}

func TestReverbSyntheticImpulse(t *testing.T) {
	ctx := testutil.Context(t)

	rev, err := NewReverb(ctx, 0.3, nil)
	if err != nil {
		t.Fatalf("NewReverb() error = %v", err)
	}

	if got := rev.Convolver().Impulse().NumChannels(); got != 2 {
		t.Fatalf("impulse channels = %d, want 2", got)
	}

	src := testutil.Source(t, ctx, []float64{1})
	if err := graph.Connect(src, rev, ctx.Destination()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	left, right := testutil.Render(ctx, 40)
	testutil.RequireFinite(t, left)
	testutil.RequireFinite(t, right)

	if testutil.Peak(left[1024:]) == 0 {
		t.Fatal("expected a reverberant tail")
	}
}

func TestSyntheticImpulse(t *testing.T) {
	a, err := SyntheticImpulse(8000, 0.5, 2)
	if err != nil {
		t.Fatalf("SyntheticImpulse() error = %v", err)
	}

	b, err := SyntheticImpulse(8000, 0.5, 2)
	if err != nil {
		t.Fatalf("SyntheticImpulse() error = %v", err)
	}

	if a.Len() != 4000 {
		t.Fatalf("Len() = %d, want 4000", a.Len())
	}

	testutil.RequireSliceNearlyEqual(t, a.Channels[0], b.Channels[0], 0)

	if testutil.Peak(a.Channels[0][3900:]) >= testutil.Peak(a.Channels[0][:100]) {
		t.Fatal("impulse does not decay")
	}

	if _, err := SyntheticImpulse(8000, 0, 2); err == nil {
		t.Fatal("SyntheticImpulse() expected error for zero length")
	}
}
