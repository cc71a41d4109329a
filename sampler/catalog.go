package sampler

import (
	"maps"
	"slices"
)

// Instrument names in the built-in catalog.
const (
	NotInLove = "notinlove"
	Cissy     = "cissy"
)

// ImpulseFile is the room response shipped with the built-in assets.
const ImpulseFile = "conic_echo_long_hall_short.mp3"

// Definition describes one instrument: the file it plays from and, per pad
// key, where each sample starts. Keys missing from Gains, Lengths or Rates
// use gain 1, play until stopped, and rate 1.
type Definition struct {
	SourceFile string
	Offsets    map[rune]float64
	Gains      map[rune]float64
	Lengths    map[rune]float64
	Rates      map[rune]float64

	// Tempo is the pattern speed in steps per minute.
	Tempo          float64
	Patterns       []string
	ActivePatterns []int
}

// Catalog maps instrument names to definitions.
type Catalog map[string]Definition

// Names returns the instrument names in sorted order.
func (c Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

// DefaultCatalog returns the built-in instruments. The result is a fresh
// copy; callers may modify it.
func DefaultCatalog() Catalog {
	return Catalog{
		NotInLove: {
			SourceFile: "notinlove.mp3",
			Offsets: map[rune]float64{
				'1': 0.5, '2': 2, '3': 3, '4': 3.5,
				'Q': 4.98, 'W': 5.5, 'E': 10.03, 'R': 10.55,
				'A': 27.25, 'S': 30, 'D': 31, 'F': 31.8,
				'Z': 33.55, 'X': 34.2, 'C': 37.1, 'V': 40.61,
			},
			Tempo: 400,
			Patterns: []string{
				"Q Q W QQ WQQW W   R R ER E RE  E",
				"X XZX ZX ZXZC C X ZZXZZXZXZZC C ",
				"SASADASA",
			},
			ActivePatterns: []int{1},
		},
		Cissy: {
			SourceFile: "cissy-strut-start.mp3",
			Offsets:    map[rune]float64{'1': 0},
		},
	}
}

// Keys returns the pad layout, one string per row.
func Keys() []string {
	return []string{"1234", "QWER", "ASDF", "ZXCV"}
}
