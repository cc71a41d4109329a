package effectchain

import (
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
	"github.com/cwbudde/algo-menagerie/internal/testutil"
)

func newTestChain(t *testing.T) (*graph.Context, *Chain) {
	t.Helper()

	ctx := testutil.Context(t)
	impulse := testutil.Buffer(t, ctx, testutil.Impulse(64, 0))

	c, err := New(ctx, DefaultRegistry(WithImpulse(impulse)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return ctx, c
}

// wantEdges is the edge set of a serial chain: consecutive pairs plus the
// two endpoint hops.
func wantEdges(chain []Name) []Edge {
	path := append([]Name{InputName}, chain...)
	path = append(path, OutputName)

	var edges []Edge

	for i := 1; i < len(path); i++ {
		e := Edge{From: path[i-1], To: path[i]}
		if !slices.Contains(edges, e) {
			edges = append(edges, e)
		}
	}

	return sortEdges(edges)
}

func sortEdges(edges []Edge) []Edge {
	out := slices.Clone(edges)
	slices.SortFunc(out, func(a, b Edge) int {
		if c := strings.Compare(string(a.From), string(b.From)); c != 0 {
			return c
		}

		return strings.Compare(string(a.To), string(b.To))
	})

	return out
}

func requireEdges(t *testing.T, c *Chain, chain []Name) {
	t.Helper()

	got := sortEdges(c.Edges())
	want := wantEdges(chain)

	if !slices.Equal(got, want) {
		t.Fatalf("Edges() = %v, want %v", got, want)
	}
}
