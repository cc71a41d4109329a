package sampler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cwbudde/algo-menagerie/internal/testutil"
)

func TestCurrentBeforeLoad(t *testing.T) {
	_, _, m := newTestManager(t)

	if _, err := m.Current(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Current() error = %v, want ErrNotReady", err)
	}

	if err := m.Play('A', 0); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Play() error = %v, want ErrNotReady", err)
	}

	if err := m.PlayFullSample(nil); !errors.Is(err, ErrNotReady) {
		t.Fatalf("PlayFullSample() error = %v, want ErrNotReady", err)
	}

	if got := m.State("a"); got != NotRequested {
		t.Fatalf("State() = %v, want %v", got, NotRequested)
	}
}

func TestChangeSamplerDedupesConcurrentLoads(t *testing.T) {
	_, loader, m := newTestManager(t)
	gate := loader.gate("a.wav")

	var (
		wg      sync.WaitGroup
		results [2]*Sampler
		errs    [2]error
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		results[0], errs[0] = m.ChangeSampler(context.Background(), "a")
	}()

	<-loader.entered

	if got := m.State("a"); got != Loading {
		t.Fatalf("State() = %v, want %v", got, Loading)
	}

	if _, err := m.Current(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Current() error = %v, want ErrNotReady while loading", err)
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		results[1], errs[1] = m.ChangeSampler(context.Background(), "a")
	}()

	close(gate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("ChangeSampler() #%d error = %v", i, err)
		}
	}

	if results[0] != results[1] {
		t.Fatal("concurrent callers observed different samplers")
	}

	if n := loader.count("a.wav"); n != 1 {
		t.Fatalf("loads = %d, want 1", n)
	}

	cur, err := m.Current()
	if err != nil || cur != results[0] {
		t.Fatalf("Current() = %v, %v; want loaded sampler", cur, err)
	}

	again, err := m.ChangeSampler(context.Background(), "a")
	if err != nil || again != results[0] {
		t.Fatalf("cached ChangeSampler() = %v, %v", again, err)
	}

	if n := loader.count("a.wav"); n != 1 {
		t.Fatalf("loads after cache hit = %d, want 1", n)
	}

	if got := m.State("a"); got != Ready {
		t.Fatalf("State() = %v, want %v", got, Ready)
	}
}

func TestCurrentFollowsLastResolved(t *testing.T) {
	_, loader, m := newTestManager(t)

	a, err := m.ChangeSampler(context.Background(), "a")
	if err != nil {
		t.Fatalf("ChangeSampler(a) error = %v", err)
	}

	<-loader.entered

	gate := loader.gate("b.wav")
	done := make(chan *Sampler)

	go func() {
		b, err := m.ChangeSampler(context.Background(), "b")
		if err != nil {
			t.Errorf("ChangeSampler(b) error = %v", err)
		}

		done <- b
	}()

	<-loader.entered

	// b is still loading; pads keep playing a.
	if cur, _ := m.Current(); cur != a {
		t.Fatalf("Current() = %v, want a while b loads", cur.Name())
	}

	if err := m.Play('A', 0); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	close(gate)
	b := <-done

	if cur, _ := m.Current(); cur != b {
		t.Fatalf("Current() = %v, want b", cur.Name())
	}

	// Switching back is a cache hit and immediate.
	if got, _ := m.ChangeSampler(context.Background(), "a"); got != a {
		t.Fatal("ChangeSampler(a) did not return the cached sampler")
	}

	if cur, _ := m.Current(); cur != a {
		t.Fatalf("Current() = %v, want a", cur.Name())
	}
}

func TestChangeSamplerLoadFailure(t *testing.T) {
	_, loader, m := newTestManager(t)
	loader.setFail("a.wav", errDecode)

	_, err := m.ChangeSampler(context.Background(), "a")
	if !errors.Is(err, ErrLoad) || !errors.Is(err, errDecode) {
		t.Fatalf("ChangeSampler() error = %v, want ErrLoad wrapping errDecode", err)
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.File != "a.wav" {
		t.Fatalf("ChangeSampler() error = %v, want *LoadError for a.wav", err)
	}

	if got := m.State("a"); got != NotRequested {
		t.Fatalf("State() = %v, want %v", got, NotRequested)
	}

	if _, err := m.Current(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Current() error = %v, want ErrNotReady", err)
	}

	loader.setFail("a.wav", nil)

	if _, err := m.ChangeSampler(context.Background(), "a"); err != nil {
		t.Fatalf("retry ChangeSampler() error = %v", err)
	}

	if n := loader.count("a.wav"); n != 2 {
		t.Fatalf("loads = %d, want 2", n)
	}
}

func TestChangeSamplerUnknownInstrument(t *testing.T) {
	_, _, m := newTestManager(t)

	if _, err := m.ChangeSampler(context.Background(), "nope"); !errors.Is(err, ErrUnknownInstrument) {
		t.Fatalf("ChangeSampler() error = %v, want ErrUnknownInstrument", err)
	}
}

func TestChangeSamplerCallerCancel(t *testing.T) {
	_, loader, m := newTestManager(t)
	gate := loader.gate("a.wav")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error)

	go func() {
		_, err := m.ChangeSampler(ctx, "a")
		errc <- err
	}()

	<-loader.entered
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("ChangeSampler() error = %v, want context.Canceled", err)
	}

	// The load itself carries on for later callers.
	close(gate)

	s, err := m.ChangeSampler(context.Background(), "a")
	if err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	if cur, _ := m.Current(); cur != s {
		t.Fatal("Current() is not the loaded sampler")
	}

	if n := loader.count("a.wav"); n != 1 {
		t.Fatalf("loads = %d, want 1", n)
	}
}

func TestPlayFullSample(t *testing.T) {
	ctx, _, m := newTestManager(t)

	if _, err := m.ChangeSampler(context.Background(), "a"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	m.StopFullSample()

	ended := make(chan struct{}, 1)
	if err := m.PlayFullSample(func() { ended <- struct{}{} }); err != nil {
		t.Fatalf("PlayFullSample() error = %v", err)
	}

	if err := m.Play('B', 0); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	left, _ := testutil.Render(ctx, 2)

	// Preview (frame 0 of the ramp) and the pad hit sound together.
	n := float64(rampSeconds * ctx.SampleRate())
	testutil.RequireNear(t, "mixed", left[10], 10/n+(2*ctx.SampleRate()+10)/n, 1e-9)

	m.StopFullSample()
	m.StopFullSample()
	testutil.Render(ctx, 1)

	select {
	case <-ended:
	default:
		t.Fatal("onComplete did not run after stop")
	}
}

func TestPlayFullSampleRunsToEnd(t *testing.T) {
	ctx, _, m := newTestManager(t)

	if _, err := m.ChangeSampler(context.Background(), "a"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	ended := make(chan struct{}, 1)
	if err := m.PlayFullSample(func() { ended <- struct{}{} }); err != nil {
		t.Fatalf("PlayFullSample() error = %v", err)
	}

	quanta := int(rampSeconds*ctx.SampleRate())/ctx.BlockSize() + 2
	testutil.Render(ctx, quanta)

	select {
	case <-ended:
	default:
		t.Fatal("onComplete did not run at the end of the buffer")
	}
}

func TestManagerPlayAtPosition(t *testing.T) {
	ctx, _, m := newTestManager(t)

	if err := m.PlayAtPosition(0.5, 0); !errors.Is(err, ErrNotReady) {
		t.Fatalf("PlayAtPosition() error = %v, want ErrNotReady", err)
	}

	if _, err := m.ChangeSampler(context.Background(), "a"); err != nil {
		t.Fatalf("ChangeSampler() error = %v", err)
	}

	if err := m.PlayAtPosition(0.5, 0); err != nil {
		t.Fatalf("PlayAtPosition() error = %v", err)
	}

	left, _ := testutil.Render(ctx, 1)
	testutil.RequireNear(t, "start", left[0], 0.5, 1e-9)
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{NotRequested: "not-requested", Loading: "loading", Ready: "ready", 7: "State(7)"} {
		if got := s.String(); got != want {
			t.Fatalf("String() = %q, want %q", got, want)
		}
	}
}
