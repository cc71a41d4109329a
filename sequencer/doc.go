// Package sequencer turns step strings into timed sample triggers.
//
// Patterns are registered once as loops with a Scheduler. Layers are
// switched on and off by filtering callbacks against the active set, so
// toggling never touches the scheduler's loop state. Lookahead is the
// bundled Scheduler: it is pumped from the audio clock and hands out
// trigger times slightly ahead of now.
package sequencer
