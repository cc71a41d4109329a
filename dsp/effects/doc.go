// Package effects provides the non-modulation composites of the effect
// pool: a waveshaping distortion, a feedback delay and a convolution
// reverb. Each is a graph node with a single input and output.
package effects
