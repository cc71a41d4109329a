package main

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-menagerie/internal/playback"
)

var playOpts struct {
	latency time.Duration
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the instrument live from the keyboard",
	Long: `play opens the default audio device and a terminal UI. The four pad rows
(1234, QWER, ASDF, ZXCV) trigger slices of the instrument, F1-F3 select
the effect presets and space starts or stops the pattern loop.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().DurationVar(&playOpts.latency, "latency", 40*time.Millisecond, "device buffer size")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	// Logging to the terminal would tear the UI; debug output goes to a file.
	logger := newLogger(io.Discard, false)

	if cfg.debug {
		f, err := tea.LogToFile("menagerie.log", "")
		if err != nil {
			return err
		}
		defer f.Close()

		logger = newLogger(f, true)
	}

	engine, err := setup(cmd.Context(), logger)
	if err != nil {
		return err
	}

	player, err := playback.Open(cfg.sampleRate, engine, playOpts.latency)
	if err != nil {
		return err
	}
	defer player.Close()

	player.Start()

	p := tea.NewProgram(newModel(engine), tea.WithAltScreen())
	_, err = p.Run()

	return err
}
