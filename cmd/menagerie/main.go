// Command menagerie plays the sample instruments through the effect chain.
//
// Usage:
//
//	menagerie play [flags]
//	menagerie render [flags]
//
// Examples:
//
//	menagerie play --assets ./assets --instrument notinlove --preset 2
//	menagerie render --chain chorus,delay --patterns 0,1 -d 8s -o out.wav
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-menagerie/dsp/effectchain"
	"github.com/cwbudde/algo-menagerie/dsp/graph"
	"github.com/cwbudde/algo-menagerie/internal/menagerie"
	"github.com/cwbudde/algo-menagerie/sampler"
)

// Version is set at build time.
var Version = "dev"

type config struct {
	sampleRate int
	blockSize  int
	assets     string
	instrument string
	preset     int
	chain      []string
	patterns   []int
	debug      bool
}

var cfg config

var rootCmd = &cobra.Command{
	Use:   "menagerie",
	Short: "Sample pads, patterns and an effect chain",
	Long: `menagerie loads a sampled instrument, maps slices of it to keyboard pads,
loops its step patterns and runs everything through a reconfigurable
effect chain. Audio can be played live or rendered to a WAV file.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.IntVar(&cfg.sampleRate, "sample-rate", 48000, "output sample rate in Hz")
	f.IntVar(&cfg.blockSize, "block-size", 128, "render quantum in frames")
	f.StringVarP(&cfg.assets, "assets", "a", "assets", "directory holding instrument and impulse files")
	f.StringVarP(&cfg.instrument, "instrument", "i", sampler.NotInLove, "instrument to load")
	f.IntVarP(&cfg.preset, "preset", "p", 0, "effect preset number (0 keeps --chain)")
	f.StringSliceVar(&cfg.chain, "chain", nil, "effect chain, e.g. chorus,delay,reverb")
	f.IntSliceVar(&cfg.patterns, "patterns", nil, "pattern layers to enable instead of the defaults")
	f.BoolVar(&cfg.debug, "debug", false, "log debug output to stderr")

	rootCmd.AddCommand(renderCmd, playCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "menagerie:", err)
		os.Exit(1)
	}
}

// newLogger writes warnings to w, and everything with debug set.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadImpulse reads the reverb impulse from the assets directory. A missing
// or unreadable file yields nil, which makes the reverb use its synthetic
// impulse.
func loadImpulse(ctx context.Context, loader sampler.Loader, logger *slog.Logger) *graph.Buffer {
	buf, err := loader.Load(ctx, sampler.ImpulseFile)
	if err != nil {
		logger.Warn("impulse unavailable, using synthetic tail", "file", sampler.ImpulseFile, "error", err)

		return nil
	}

	return buf
}

// setup builds the engine from the persistent flags, loads the instrument
// and applies the effect and pattern selection.
func setup(ctx context.Context, logger *slog.Logger) (*menagerie.Engine, error) {
	loader := sampler.FileLoader{Root: cfg.assets}

	engine, err := menagerie.NewEngine(float64(cfg.sampleRate), loader,
		menagerie.WithBlockSize(cfg.blockSize),
		menagerie.WithLogger(logger),
		menagerie.WithImpulse(loadImpulse(ctx, loader, logger)))
	if err != nil {
		return nil, err
	}

	if err := engine.ChangeSampler(ctx, cfg.instrument); err != nil {
		return nil, err
	}

	if err := configureChain(engine); err != nil {
		return nil, err
	}

	if cfg.patterns != nil {
		if err := selectPatterns(engine, cfg.patterns); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

func configureChain(engine *menagerie.Engine) error {
	if cfg.preset > 0 {
		if err := engine.ApplyPreset(cfg.preset); err != nil {
			return fmt.Errorf("preset %d of %d: %w", cfg.preset, effectchain.NumPresets(), err)
		}

		return nil
	}

	return engine.ConnectNodes(cfg.chain)
}

// selectPatterns enables exactly the layers in ids.
func selectPatterns(engine *menagerie.Engine, ids []int) error {
	states, err := engine.Patterns()
	if err != nil {
		return err
	}

	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	for _, s := range states {
		if err := engine.SetPattern(s.ID, want[s.ID]); err != nil {
			return err
		}
	}

	return nil
}
