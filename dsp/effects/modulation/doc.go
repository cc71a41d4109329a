// Package modulation provides the modulation composites of the effect pool,
// built from graph units.
//
// Included composites:
//   - LFO: periodic-wave oscillator scaled by a gain.
//   - Warper: LFO-swept delay line.
//   - Splitter: stereo split with per-side taps and a merger.
//   - StereoChorus: three cross-fed warpers with phase offsets.
//   - AM: amplitude modulation (ring modulation at zero center gain).
//   - Tremolo: AM around unity gain.
//   - Multiplier: input squared against itself.
//   - NestedAM: an LFO driven through an AM into another AM's carrier.
package modulation
