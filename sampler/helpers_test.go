package sampler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
	"github.com/cwbudde/algo-menagerie/internal/testutil"
)

const rampSeconds = 3

// ramp returns a mono buffer whose frame i holds i/len.
func ramp(sampleRate float64) *graph.Buffer {
	buf, err := graph.NewBuffer(sampleRate, [][]float64{testutil.Ramp(int(sampleRate * rampSeconds))})
	if err != nil {
		panic(err)
	}

	return buf
}

func testDefinition() Definition {
	return Definition{
		SourceFile: "ramp.wav",
		Offsets:    map[rune]float64{'A': 1.0, 'B': 2.0, 'C': 0.5},
		Gains:      map[rune]float64{'C': 0.5},
		Lengths:    map[rune]float64{'B': 0.01},
		Rates:      map[rune]float64{'C': 2},
	}
}

func newTestSampler(t *testing.T) (*graph.Context, *Sampler) {
	t.Helper()

	ctx := testutil.Context(t)

	s, err := New(ctx, "ramp", testDefinition(), ramp(ctx.SampleRate()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := graph.Connect(s.Output(), ctx.Destination()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	return ctx, s
}

// fakeLoader counts loads per file. Files with a gate block until the gate
// is closed; files in fail return that error.
type fakeLoader struct {
	sampleRate float64

	mu      sync.Mutex
	counts  map[string]int
	gates   map[string]chan struct{}
	fail    map[string]error
	entered chan string
}

func newFakeLoader(sampleRate float64) *fakeLoader {
	return &fakeLoader{
		sampleRate: sampleRate,
		counts:     make(map[string]int),
		gates:      make(map[string]chan struct{}),
		fail:       make(map[string]error),
		entered:    make(chan string, 16),
	}
}

func (l *fakeLoader) gate(file string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan struct{})
	l.gates[file] = ch

	return ch
}

func (l *fakeLoader) setFail(file string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err == nil {
		delete(l.fail, file)
	} else {
		l.fail[file] = err
	}
}

func (l *fakeLoader) count(file string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.counts[file]
}

func (l *fakeLoader) Load(ctx context.Context, file string) (*graph.Buffer, error) {
	l.mu.Lock()
	l.counts[file]++
	gate := l.gates[file]
	err := l.fail[file]
	l.mu.Unlock()

	l.entered <- file

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	return ramp(l.sampleRate), nil
}

var errDecode = errors.New("decode failed")

func testCatalog() Catalog {
	a := testDefinition()
	a.SourceFile = "a.wav"

	b := testDefinition()
	b.SourceFile = "b.wav"

	return Catalog{"a": a, "b": b}
}

func newTestManager(t *testing.T) (*graph.Context, *fakeLoader, *Manager) {
	t.Helper()

	ctx := testutil.Context(t)
	loader := newFakeLoader(ctx.SampleRate())

	m, err := NewManager(ctx, loader, WithCatalog(testCatalog()))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if err := graph.Connect(m.Output(), ctx.Destination()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	return ctx, loader, m
}
