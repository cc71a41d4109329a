package menagerie

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/algo-menagerie/dsp/effectchain"
	"github.com/cwbudde/algo-menagerie/dsp/graph"
	"github.com/cwbudde/algo-menagerie/internal/testutil"
	"github.com/cwbudde/algo-menagerie/sampler"
	"github.com/cwbudde/algo-menagerie/sequencer"
)

const testRate = 48000

func testCatalog() sampler.Catalog {
	return sampler.Catalog{
		"pads": {
			SourceFile:     "pads.wav",
			Offsets:        map[rune]float64{'A': 0, 'B': 0.5},
			Lengths:        map[rune]float64{'A': 0.05, 'B': 0.05},
			Tempo:          600,
			Patterns:       []string{"A", "B B "},
			ActivePatterns: []int{0},
		},
		"oneshot": {
			SourceFile: "oneshot.wav",
			Offsets:    map[rune]float64{'1': 0},
		},
	}
}

func dcBuffer() (*graph.Buffer, error) {
	return graph.NewBuffer(testRate, [][]float64{testutil.DC(0.5, testRate)})
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	return newTestEngineWith(t, sampler.LoaderFunc(func(context.Context, string) (*graph.Buffer, error) {
		return dcBuffer()
	}))
}

func newTestEngineWith(t *testing.T, loader sampler.Loader) *Engine {
	t.Helper()

	impulse, err := graph.NewBuffer(testRate, [][]float64{{1}})
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	e, err := NewEngine(testRate, loader,
		WithCatalog(testCatalog()),
		WithImpulse(impulse),
		WithBlockSize(128),
		WithLookahead(sequencer.WithStartDelay(0)))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	return e
}

func TestEngineBeforeLoad(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Play('A'); !errors.Is(err, sampler.ErrNotReady) {
		t.Fatalf("Play() error = %v, want ErrNotReady", err)
	}

	if err := e.PlayPattern(); !errors.Is(err, sampler.ErrNotReady) {
		t.Fatalf("PlayPattern() error = %v, want ErrNotReady", err)
	}

	if _, err := e.Waveform(10); !errors.Is(err, sampler.ErrNotReady) {
		t.Fatalf("Waveform() error = %v, want ErrNotReady", err)
	}

	if e.Instrument() != "" || e.PatternPlaying() {
		t.Fatal("engine reports an instrument before any load")
	}
}

func TestEnginePadThroughChain(t *testing.T) {
	e := newTestEngine(t)

	if err := e.ChangeSampler(context.Background(), "pads"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	if err := e.Play('A'); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	left, right := testutil.Render(e.Context(), 2)
	testutil.RequireNear(t, "left", left[10], 0.5, 1e-9)
	testutil.RequireNear(t, "right", right[10], 0.5, 1e-9)

	dst := make([]float32, 2*128)
	e.Render(dst)
	testutil.RequireNear(t, "interleaved", float64(dst[0]), 0.5, 1e-6)

	if err := e.ApplyPreset(2); err != nil {
		t.Fatalf("ApplyPreset() error = %v", err)
	}

	left, _ = testutil.Render(e.Context(), 8)
	testutil.RequireFinite(t, left)
}

func TestEngineConnectNodes(t *testing.T) {
	e := newTestEngine(t)

	if err := e.ConnectNodes([]string{"chorus", "reverb"}); err != nil {
		t.Fatalf("ConnectNodes() error = %v", err)
	}

	err := e.ConnectNodes([]string{"chorus", "bogus"})

	var cfgErr *effectchain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("ConnectNodes() error = %v, want *ConfigurationError", err)
	}

	got := e.Chain().Current()
	if len(got) != 2 || got[0] != effectchain.Chorus || got[1] != effectchain.Reverb {
		t.Fatalf("Current() = %v, want [chorus reverb]", got)
	}

	if got := e.Effects(); len(got) != 2 || got[0] != "chorus" || got[1] != "reverb" {
		t.Fatalf("Effects() = %v, want [chorus reverb]", got)
	}
}

func TestEnginePatterns(t *testing.T) {
	e := newTestEngine(t)

	if err := e.ChangeSampler(context.Background(), "pads"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	patterns, err := e.Patterns()
	if err != nil {
		t.Fatalf("Patterns() error = %v", err)
	}

	if len(patterns) != 2 || !patterns[0].Active || patterns[1].Active {
		t.Fatalf("Patterns() = %+v, want layer 0 active only", patterns)
	}

	if err := e.PlayPattern(); err != nil {
		t.Fatalf("PlayPattern() error = %v", err)
	}

	if !e.PatternPlaying() {
		t.Fatal("PatternPlaying() = false after PlayPattern")
	}

	left, _ := testutil.Render(e.Context(), 4)
	if testutil.Peak(left) == 0 {
		t.Fatal("pattern produced no audio")
	}

	if err := e.SetPattern(1, true); err != nil {
		t.Fatalf("SetPattern() error = %v", err)
	}

	if err := e.StopPattern(); err != nil {
		t.Fatalf("StopPattern() error = %v", err)
	}

	if e.PatternPlaying() {
		t.Fatal("PatternPlaying() = true after StopPattern")
	}

	patterns, _ = e.Patterns()
	if !patterns[1].Active {
		t.Fatal("SetPattern(1, true) not reflected")
	}
}

func TestEngineInstrumentWithoutPatterns(t *testing.T) {
	e := newTestEngine(t)

	if err := e.ChangeSampler(context.Background(), "pads"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	if err := e.PlayPattern(); err != nil {
		t.Fatalf("PlayPattern() error = %v", err)
	}

	if err := e.ChangeSampler(context.Background(), "oneshot"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	if err := e.PlayPattern(); !errors.Is(err, ErrNoPatterns) {
		t.Fatalf("PlayPattern() error = %v, want ErrNoPatterns", err)
	}

	if e.Instrument() != "oneshot" {
		t.Fatalf("Instrument() = %q, want oneshot", e.Instrument())
	}

	// Switching back finds the pads loop stopped.
	if err := e.ChangeSampler(context.Background(), "pads"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	if e.PatternPlaying() {
		t.Fatal("previous instrument's loop kept running")
	}
}

func TestEngineFullSampleAndWaveform(t *testing.T) {
	e := newTestEngine(t)

	if err := e.ChangeSampler(context.Background(), "oneshot"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	ended := false
	if err := e.PlayFullSample(func() { ended = true }); err != nil {
		t.Fatalf("PlayFullSample() error = %v", err)
	}

	left, _ := testutil.Render(e.Context(), 1)
	testutil.RequireNear(t, "preview", left[0], 0.5, 1e-9)

	e.StopFullSample()
	testutil.Render(e.Context(), 1)

	if !ended {
		t.Fatal("onEnded did not run after StopFullSample")
	}

	env, err := e.Waveform(32)
	if err != nil {
		t.Fatalf("Waveform() error = %v", err)
	}

	if len(env) != 32 || env[0] != 1 {
		t.Fatalf("Waveform() = %v", env)
	}

	if err := e.PlayAtPosition(0.5); err != nil {
		t.Fatalf("PlayAtPosition() error = %v", err)
	}
}

func TestEngineFollowsSwitchAfterCancel(t *testing.T) {
	entered := make(chan struct{}, 1)
	gate := make(chan struct{})

	e := newTestEngineWith(t, sampler.LoaderFunc(func(_ context.Context, file string) (*graph.Buffer, error) {
		if file == "oneshot.wav" {
			entered <- struct{}{}
			<-gate
		}

		return dcBuffer()
	}))

	if err := e.ChangeSampler(context.Background(), "pads"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	if err := e.PlayPattern(); err != nil {
		t.Fatalf("PlayPattern() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)

	go func() { errc <- e.ChangeSampler(ctx, "oneshot") }()

	<-entered
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("ChangeSampler() error = %v, want context.Canceled", err)
	}

	if e.Instrument() != "pads" {
		t.Fatalf("Instrument() = %q before the load resolved, want pads", e.Instrument())
	}

	close(gate)

	deadline := time.Now().Add(5 * time.Second)
	for e.Manager().State("oneshot") != sampler.Ready {
		if time.Now().After(deadline) {
			t.Fatal("oneshot never finished loading")
		}

		time.Sleep(time.Millisecond)
	}

	if e.Instrument() != "oneshot" {
		t.Fatalf("Instrument() = %q, want oneshot", e.Instrument())
	}

	// The next quantum retires the pads loop.
	left, _ := testutil.Render(e.Context(), 2)
	testutil.RequireFinite(t, left)

	if err := e.PlayPattern(); !errors.Is(err, ErrNoPatterns) {
		t.Fatalf("PlayPattern() error = %v, want ErrNoPatterns", err)
	}

	if err := e.Play('1'); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if err := e.ChangeSampler(context.Background(), "pads"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	if e.PatternPlaying() {
		t.Fatal("pads loop kept running after the switch to oneshot")
	}
}
