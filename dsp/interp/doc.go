// Package interp provides the interpolation primitives used by the delay
// line, the wave shaper and the sample player.
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (default for fractional delays)
//   - [Table]:    clamped linear lookup into a sampled curve
package interp
