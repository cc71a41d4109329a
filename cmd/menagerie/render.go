package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/youpy/go-wav"

	"github.com/cwbudde/algo-menagerie/internal/menagerie"
)

const renderChunk = 4096 // frames per WriteSamples call

var renderOpts struct {
	duration time.Duration
	output   string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the instrument offline to a 16-bit WAV file",
	Long: `render loads the instrument, starts its pattern loop (or previews the whole
sample when it has no patterns) and writes the effect chain output to a
stereo WAV file.`,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.DurationVarP(&renderOpts.duration, "duration", "d", 8*time.Second, "length of the rendered file")
	f.StringVarP(&renderOpts.output, "output", "o", "menagerie.wav", "output WAV path")
}

func runRender(cmd *cobra.Command, _ []string) error {
	if renderOpts.duration <= 0 {
		return fmt.Errorf("duration must be positive: %s", renderOpts.duration)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.debug)

	engine, err := setup(cmd.Context(), logger)
	if err != nil {
		return err
	}

	if err := startSource(engine); err != nil {
		return err
	}

	f, err := os.Create(renderOpts.output)
	if err != nil {
		return err
	}
	defer f.Close()

	frames := int(renderOpts.duration.Seconds() * float64(cfg.sampleRate))
	if err := writeWAV(f, engine, frames, cfg.sampleRate); err != nil {
		return err
	}

	logger.Info("rendered", "file", renderOpts.output, "frames", frames, "instrument", engine.Instrument())

	return f.Close()
}

// startSource starts the pattern loop, or the full-sample preview for an
// instrument without patterns.
func startSource(engine *menagerie.Engine) error {
	err := engine.PlayPattern()
	if errors.Is(err, menagerie.ErrNoPatterns) {
		return engine.PlayFullSample(nil)
	}

	return err
}

type renderer interface {
	Render(dst []float32)
}

// writeWAV renders frames stereo frames from r and writes them to w as
// 16-bit PCM.
func writeWAV(w io.Writer, r renderer, frames, sampleRate int) error {
	out := wav.NewWriter(w, uint32(frames), 2, uint32(sampleRate), 16)

	buf := make([]float32, 2*renderChunk)
	samples := make([]wav.Sample, renderChunk)

	for done := 0; done < frames; {
		n := min(renderChunk, frames-done)
		r.Render(buf[:2*n])

		for i := range n {
			samples[i].Values[0] = toPCM16(buf[2*i])
			samples[i].Values[1] = toPCM16(buf[2*i+1])
		}

		if err := out.WriteSamples(samples[:n]); err != nil {
			return fmt.Errorf("write samples: %w", err)
		}

		done += n
	}

	return nil
}

func toPCM16(v float32) int {
	if math.IsNaN(float64(v)) {
		return 0
	}

	return int(math.Round(float64(max(-1, min(1, v))) * math.MaxInt16))
}
