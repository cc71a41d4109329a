package sequencer

// Scheduler plays fixed-length note loops at a shared tempo. Once started
// it calls back with each note and the audio-clock time it should sound
// at, looping until stopped.
type Scheduler interface {
	AddLoop(steps int, notes []Note) error
	Start()
	Stop()
}

// SchedulerFactory builds a Scheduler for a tempo in steps per minute.
type SchedulerFactory func(tempo float64, callback func(n Note, when float64)) (Scheduler, error)
