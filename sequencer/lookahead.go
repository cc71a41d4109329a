package sequencer

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

const (
	defaultLookahead  = 0.1
	defaultStartDelay = 0.05
)

// Clock reports the current audio-clock time in seconds.
type Clock func() float64

// LookaheadOption configures a Lookahead.
type LookaheadOption func(*Lookahead) error

// WithLookahead sets how far ahead of now Pump schedules, in seconds.
func WithLookahead(seconds float64) LookaheadOption {
	return func(l *Lookahead) error {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("lookahead must be > 0 and finite: %f", seconds)
		}

		l.lookahead = seconds

		return nil
	}
}

// WithStartDelay sets the gap between Start and the first step.
func WithStartDelay(seconds float64) LookaheadOption {
	return func(l *Lookahead) error {
		if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("start delay must be >= 0 and finite: %f", seconds)
		}

		l.startDelay = seconds

		return nil
	}
}

type loop struct {
	steps int
	due   [][]Note // notes by step index
}

type delivery struct {
	note Note
	when float64
}

// Lookahead is a Scheduler driven by explicit Pump calls. Loops of any
// length share one step counter, so a 3-step and a 4-step loop realign
// every 12 steps.
type Lookahead struct {
	clock      Clock
	callback   func(Note, float64)
	stepLen    float64
	lookahead  float64
	startDelay float64

	mu      sync.Mutex
	loops   []loop
	running bool
	origin  float64
	counter int
}

// NewLookahead creates a scheduler at tempo steps per minute.
func NewLookahead(clock Clock, tempo float64, callback func(Note, float64), opts ...LookaheadOption) (*Lookahead, error) {
	if clock == nil || callback == nil {
		return nil, errors.New("lookahead: nil clock or callback")
	}

	if tempo <= 0 || math.IsNaN(tempo) || math.IsInf(tempo, 0) {
		return nil, fmt.Errorf("lookahead: tempo must be > 0 and finite: %f", tempo)
	}

	l := &Lookahead{
		clock:      clock,
		callback:   callback,
		stepLen:    60 / tempo,
		lookahead:  defaultLookahead,
		startDelay: defaultStartDelay,
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// LookaheadFactory returns a SchedulerFactory building Lookahead
// schedulers on clock.
func LookaheadFactory(clock Clock, opts ...LookaheadOption) SchedulerFactory {
	return func(tempo float64, callback func(Note, float64)) (Scheduler, error) {
		return NewLookahead(clock, tempo, callback, opts...)
	}
}

// StepDuration returns the length of one step in seconds.
func (l *Lookahead) StepDuration() float64 { return l.stepLen }

// AddLoop registers a loop of steps steps.
func (l *Lookahead) AddLoop(steps int, notes []Note) error {
	if steps <= 0 {
		return fmt.Errorf("lookahead: loop length must be > 0: %d", steps)
	}

	lp := loop{steps: steps, due: make([][]Note, steps)}

	for _, n := range notes {
		if n.Step < 0 || n.Step >= steps {
			return fmt.Errorf("lookahead: note step %d outside loop of %d", n.Step, steps)
		}

		lp.due[n.Step] = append(lp.due[n.Step], n)
	}

	l.mu.Lock()
	l.loops = append(l.loops, lp)
	l.mu.Unlock()

	return nil
}

// Start aligns step 0 to now plus the start delay.
func (l *Lookahead) Start() {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.running = true
	l.origin = now + l.startDelay
	l.counter = 0
}

// Stop halts scheduling. Steps already handed out are not recalled.
func (l *Lookahead) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.running = false
}

// Running reports whether the scheduler is started.
func (l *Lookahead) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.running
}

// Pump delivers every step due before now plus the lookahead window.
// Steps that fell more than one window behind now are skipped rather than
// played late. Callbacks run after the scheduler's lock is released.
func (l *Lookahead) Pump(now float64) {
	var out []delivery

	l.mu.Lock()

	for l.running {
		when := l.origin + float64(l.counter)*l.stepLen
		if when >= now+l.lookahead {
			break
		}

		if when < now-l.lookahead {
			l.counter++

			continue
		}

		for _, lp := range l.loops {
			for _, n := range lp.due[l.counter%lp.steps] {
				out = append(out, delivery{note: n, when: when})
			}
		}

		l.counter++
	}

	l.mu.Unlock()

	for _, d := range out {
		l.callback(d.note, d.when)
	}
}
