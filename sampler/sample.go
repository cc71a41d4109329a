package sampler

import (
	"fmt"

	"github.com/cwbudde/algo-menagerie/dsp/core"
)

// offsetPlaces is the precision the sample editor keeps for offsets.
const offsetPlaces = 2

// Sample is an editable copy of one key's settings. Changing it never
// alters the Definition it came from; PlaySample applies the edits to a
// single hit.
type Sample struct {
	Name         rune
	Offset       float64
	Length       float64
	Gain         float64
	PlaybackRate float64
	FadeIn       float64
	FadeOut      float64

	duration float64
}

// Sample returns an editable view of key.
func (s *Sampler) Sample(key rune) (Sample, error) {
	e, err := s.Lookup(key)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		Name:         key,
		Offset:       e.Offset,
		Length:       e.Length,
		Gain:         e.Gain,
		PlaybackRate: e.PlaybackRate,
		duration:     s.Duration(),
	}, nil
}

// SetOffsetFromPosition moves the sample to fraction of the source's
// duration, rounded to hundredths of a second.
func (v *Sample) SetOffsetFromPosition(fraction float64) {
	fraction = core.Clamp(fraction, 0, 1)
	v.Offset = core.Round(fraction*v.duration, offsetPlaces)
}

// PlaySample plays an edited sample at when. The hit takes the key's voice
// slot, so it cuts the key's previous voice like Play does.
func (s *Sampler) PlaySample(v Sample, when float64) error {
	if _, err := s.Lookup(v.Name); err != nil {
		return err
	}

	if v.FadeIn < 0 || v.FadeOut < 0 || !core.IsFinite(v.FadeIn) || !core.IsFinite(v.FadeOut) {
		return fmt.Errorf("sampler: sample %q: fades must be >= 0", v.Name)
	}

	src, err := s.startVoice(voiceParams{
		entry: Entry{
			Offset:       v.Offset,
			Gain:         v.Gain,
			Length:       v.Length,
			PlaybackRate: v.PlaybackRate,
		},
		gain:    v.Gain,
		fadeIn:  v.FadeIn,
		fadeOut: v.FadeOut,
	}, when)
	if err != nil {
		return err
	}

	s.retrigger(v.Name, src, when)

	return nil
}
