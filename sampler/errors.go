package sampler

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when no instrument has finished loading.
	ErrNotReady = errors.New("sampler: no instrument ready")
	// ErrUnknownKey is returned for a key the current instrument does not map.
	ErrUnknownKey = errors.New("sampler: unknown key")
	// ErrUnknownInstrument is returned for a name missing from the catalog.
	ErrUnknownInstrument = errors.New("sampler: unknown instrument")
	// ErrLoad matches every *LoadError.
	ErrLoad = errors.New("sampler: load failed")
	// ErrUnsupportedFormat is returned for files that are neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// LoadError reports a failed fetch or decode of an instrument's source.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("sampler: load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrLoad) match any load failure.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
