package graph

import (
	"math"

	"github.com/cwbudde/algo-menagerie/dsp/core"
)

// log2Of10Div20 converts decibels to the log2 domain: log2(10) / 20.
const log2Of10Div20 = 0.166096404744

// DynamicsCompressor is a stereo-linked soft-knee compressor with automatic
// makeup gain. All parameters are evaluated once per quantum.
type DynamicsCompressor struct {
	*Unit

	threshold *Param
	knee      *Param
	ratio     *Param
	attack    *Param
	release   *Param

	peakLevel float64
	reduction float64
}

// NewDynamicsCompressor creates a compressor with the customary defaults:
// threshold -24 dB, knee 30 dB, ratio 12, attack 3 ms, release 250 ms.
func NewDynamicsCompressor(ctx *Context) *DynamicsCompressor {
	d := &DynamicsCompressor{}
	d.Unit = ctx.newUnit("compressor", 1, 1, d)
	d.threshold = newParam(d.Unit, "threshold", -24, -100, 0)
	d.knee = newParam(d.Unit, "knee", 30, 0, 40)
	d.ratio = newParam(d.Unit, "ratio", 12, 1, 20)
	d.attack = newParam(d.Unit, "attack", 0.003, 0, 1)
	d.release = newParam(d.Unit, "release", 0.25, 0, 1)

	return d
}

// Threshold returns the threshold parameter in dB.
func (d *DynamicsCompressor) Threshold() *Param { return d.threshold }

// Knee returns the knee width parameter in dB.
func (d *DynamicsCompressor) Knee() *Param { return d.knee }

// Ratio returns the compression ratio parameter.
func (d *DynamicsCompressor) Ratio() *Param { return d.ratio }

// Attack returns the attack time parameter in seconds.
func (d *DynamicsCompressor) Attack() *Param { return d.attack }

// Release returns the release time parameter in seconds.
func (d *DynamicsCompressor) Release() *Param { return d.release }

// Reduction returns the gain reduction of the last rendered frame in dB
// (zero or negative).
func (d *DynamicsCompressor) Reduction() float64 {
	d.ctx.mu.Lock()
	defer d.ctx.mu.Unlock()

	return d.reduction
}

type gainComputer struct {
	thresholdLog2 float64
	kneeLog2      float64
	slope         float64
}

func newGainComputer(thresholdDB, kneeDB, ratio float64) gainComputer {
	return gainComputer{
		thresholdLog2: thresholdDB * log2Of10Div20,
		kneeLog2:      kneeDB * log2Of10Div20,
		slope:         1 - 1/ratio,
	}
}

// gain returns the static gain for a detector level, log2-domain soft knee.
func (g gainComputer) gain(level float64) float64 {
	if level <= 0 {
		return 1
	}

	overshoot := math.Log2(level) - g.thresholdLog2
	half := g.kneeLog2 * 0.5

	var effective float64

	switch {
	case g.kneeLog2 <= 0 || overshoot > half:
		if overshoot <= 0 {
			return 1
		}

		effective = overshoot
	case overshoot < -half:
		return 1
	default:
		x := overshoot + half
		effective = x * x * 0.5 / g.kneeLog2
	}

	return math.Exp2(-effective * g.slope)
}

func (d *DynamicsCompressor) process(u *Unit, in []Signal) {
	src := in[0]
	out := u.output(0, src.Channels())
	sr := u.ctx.sampleRate

	gc := newGainComputer(d.threshold.first(), d.knee.first(), d.ratio.first())

	// Makeup restores 0 dBFS to 60% of its compressed loss.
	makeup := math.Pow(1/gc.gain(1), 0.6)

	attackCoeff := 1.0
	if a := d.attack.first(); a > 0 {
		attackCoeff = 1 - math.Exp(-math.Ln2/(a*sr))
	}

	releaseCoeff := 0.0
	if r := d.release.first(); r > 0 {
		releaseCoeff = math.Exp(-math.Ln2 / (r * sr))
	}

	g := 1.0

	for i := range out[0] {
		level := 0.0
		for _, ch := range src {
			level = max(level, math.Abs(ch[i]))
		}

		if level > d.peakLevel {
			d.peakLevel += (level - d.peakLevel) * attackCoeff
		} else {
			d.peakLevel = level + (d.peakLevel-level)*releaseCoeff
		}

		g = gc.gain(d.peakLevel)
		for ch := range out {
			out[ch][i] = src[ch][i] * g * makeup
		}
	}

	d.reduction = core.LinearToDB(g)
}
