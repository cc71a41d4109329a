package effectchain

import (
	"errors"
	"slices"
	"testing"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

func dummyFactory(ctx *graph.Context) (graph.Node, error) {
	return graph.NewGain(ctx, 1)
}

func TestRegistryRegister(t *testing.T) {
	t.Run("registers and looks up factory", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(Chorus, dummyFactory); err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		if r.Lookup(Chorus) == nil {
			t.Fatal("Lookup returned nil for registered name")
		}

		if r.Lookup(Reverb) != nil {
			t.Fatal("Lookup returned a factory for an unregistered name")
		}
	})

	t.Run("rejects name outside the pool", func(t *testing.T) {
		if err := NewRegistry().Register("flanger", dummyFactory); !errors.Is(err, ErrUnknownEffect) {
			t.Fatalf("Register() error = %v, want ErrUnknownEffect", err)
		}
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		if err := NewRegistry().Register(Chorus, nil); err == nil {
			t.Fatal("expected error for nil factory")
		}
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(Chorus, dummyFactory)

		if err := r.Register(Chorus, dummyFactory); !errors.Is(err, errDuplicateEffect) {
			t.Fatalf("Register() error = %v, want errDuplicateEffect", err)
		}
	})

	t.Run("MustRegister panics on error", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("MustRegister did not panic")
			}
		}()

		NewRegistry().MustRegister(Chorus, nil)
	})
}

func TestDefaultRegistryCoversPool(t *testing.T) {
	if got := DefaultRegistry().Registered(); !slices.Equal(got, Names()) {
		t.Fatalf("Registered() = %v, want %v", got, Names())
	}
}

func TestParseNames(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []Name
		wantPos int
	}{
		{name: "empty", input: nil, want: []Name{}},
		{name: "valid", input: []string{"reverb", "am"}, want: []Name{Reverb, AM}},
		{name: "endpoint is not an effect", input: []string{"chorus", "input"}, wantPos: 1},
		{name: "case sensitive", input: []string{"Chorus"}, wantPos: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNames(tt.input)
			if tt.want == nil {
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) || cfgErr.Position != tt.wantPos {
					t.Fatalf("ParseNames() error = %v, want position %d", err, tt.wantPos)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseNames() error = %v", err)
			}

			if !slices.Equal(got, tt.want) {
				t.Fatalf("ParseNames() = %v, want %v", got, tt.want)
			}
		})
	}
}
