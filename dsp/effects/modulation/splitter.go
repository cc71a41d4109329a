package modulation

import "github.com/cwbudde/algo-menagerie/dsp/graph"

// Splitter separates its input into left and right taps and recombines
// the OutputL and OutputR gains into a stereo output.
type Splitter struct {
	*graph.Composite

	InputL  *graph.Gain
	InputR  *graph.Gain
	OutputL *graph.Gain
	OutputR *graph.Gain
}

// NewSplitter creates a stereo splitter.
func NewSplitter(ctx *graph.Context) (*Splitter, error) {
	shell, err := graph.NewComposite(ctx)
	if err != nil {
		return nil, err
	}

	split, err := graph.NewChannelSplitter(ctx, 2)
	if err != nil {
		return nil, err
	}

	merge, err := graph.NewChannelMerger(ctx, 2)
	if err != nil {
		return nil, err
	}

	s := &Splitter{Composite: shell}

	for _, g := range []**graph.Gain{&s.InputL, &s.InputR, &s.OutputL, &s.OutputR} {
		if *g, err = graph.NewGain(ctx, 1); err != nil {
			return nil, err
		}
	}

	err = ctx.Atomically(func(w *graph.Wiring) error {
		if err := w.Connect(shell.Input(), split); err != nil {
			return err
		}

		if err := w.ConnectPorts(split.Unit, 0, s.InputL.Unit, 0); err != nil {
			return err
		}

		if err := w.ConnectPorts(split.Unit, 1, s.InputR.Unit, 0); err != nil {
			return err
		}

		if err := w.ConnectPorts(s.OutputL.Unit, 0, merge.Unit, 0); err != nil {
			return err
		}

		if err := w.ConnectPorts(s.OutputR.Unit, 0, merge.Unit, 1); err != nil {
			return err
		}

		return w.Connect(merge, shell.Output())
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}
