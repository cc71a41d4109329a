package graph

import (
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-menagerie/dsp/core"
)

type eventKind int

const (
	eventSet eventKind = iota
	eventRamp
)

type event struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is a control parameter. Its per-frame value is the automated
// intrinsic value plus the mono sum of every modulating signal, clamped to
// the parameter's range.
type Param struct {
	owner *Unit
	name  string

	min, max float64

	value      float64
	anchorTime float64
	events     []event
	sources    []source

	buf      []float64
	mono     []float64
	constant bool
}

func newParam(owner *Unit, name string, value, minValue, maxValue float64) *Param {
	p := &Param{
		owner: owner,
		name:  name,
		min:   minValue,
		max:   maxValue,
		value: core.Clamp(value, minValue, maxValue),
		buf:   make([]float64, owner.ctx.blockSize),
		mono:  make([]float64, owner.ctx.blockSize),
	}

	return owner.addParam(p)
}

// Name returns the parameter name.
func (p *Param) Name() string { return p.name }

// Owner returns the unit the parameter belongs to.
func (p *Param) Owner() *Unit { return p.owner }

// Range returns the inclusive value range.
func (p *Param) Range() (float64, float64) { return p.min, p.max }

// Value returns the intrinsic value as of the last rendered quantum,
// excluding modulation.
func (p *Param) Value() float64 {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()

	return p.value
}

// SetValue sets the intrinsic value immediately and cancels all automation.
func (p *Param) SetValue(v float64) error {
	if err := p.check(v, 0); err != nil {
		return err
	}

	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()

	p.events = p.events[:0]
	p.value = core.Clamp(v, p.min, p.max)

	return nil
}

// SetValueAtTime schedules a step to v at context time t.
func (p *Param) SetValueAtTime(v, t float64) error {
	return p.schedule(event{kind: eventSet, time: t, value: v})
}

// LinearRampToValueAtTime schedules a linear ramp from the previous event
// (or the current value) reaching v at context time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) error {
	return p.schedule(event{kind: eventRamp, time: t, value: v})
}

// CancelScheduledValues removes every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()

	p.events = slices.DeleteFunc(p.events, func(e event) bool { return e.time >= t })
}

// Sources returns the units modulating p.
func (p *Param) Sources() []*Unit {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()

	out := make([]*Unit, 0, len(p.sources))
	for _, s := range p.sources {
		out = append(out, s.unit)
	}

	return out
}

func (p *Param) check(v, t float64) error {
	if !core.IsFinite(v) {
		return fmt.Errorf("%w: %s value must be finite: %f", ErrInvalidArgument, p.name, v)
	}

	if !core.IsFinite(t) || t < 0 {
		return fmt.Errorf("%w: %s time must be finite and >= 0: %f", ErrInvalidArgument, p.name, t)
	}

	return nil
}

func (p *Param) schedule(e event) error {
	if err := p.check(e.value, e.time); err != nil {
		return err
	}

	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()

	i := len(p.events)
	for i > 0 && p.events[i-1].time > e.time {
		i--
	}

	p.events = slices.Insert(p.events, i, e)

	return nil
}

// valueAt evaluates the automation timeline at t.
func (p *Param) valueAt(t float64) float64 {
	prevT, prevV := p.anchorTime, p.value

	for _, e := range p.events {
		if e.time <= t {
			prevT, prevV = e.time, e.value
			continue
		}

		if e.kind == eventRamp && e.time > prevT {
			return prevV + (e.value-prevV)*(t-prevT)/(e.time-prevT)
		}

		return prevV
	}

	return prevV
}

// render fills p.buf for the current quantum. Caller holds mu.
func (p *Param) render() {
	c := p.owner.ctx
	frames := c.blockSize
	p.constant = len(p.sources) == 0 && len(p.events) == 0

	if len(p.events) == 0 {
		for i := range p.buf {
			p.buf[i] = p.value
		}

		p.anchorTime = c.frameTime(frames)
	} else {
		for i := range p.buf {
			p.buf[i] = p.valueAt(c.frameTime(i))
		}

		end := c.frameTime(frames)
		for len(p.events) > 0 && p.events[0].time < end {
			p.anchorTime, p.value = p.events[0].time, p.events[0].value
			p.events = p.events[1:]
		}

		// A ramp still in progress continues from the quantum boundary.
		if len(p.events) > 0 && p.events[0].kind == eventRamp {
			p.value = p.valueAt(end)
			p.anchorTime = end
		}
	}

	for _, s := range p.sources {
		s.unit.pull()
		s.unit.outputs[s.port].downmix(p.mono)

		for i, v := range p.mono {
			p.buf[i] += v
		}
	}

	for i, v := range p.buf {
		if math.IsNaN(v) {
			v = p.value
		}

		p.buf[i] = core.Clamp(v, p.min, p.max)
	}

	p.value = core.Clamp(p.value, p.min, p.max)
}

// at returns the rendered value for frame i of the current quantum.
func (p *Param) at(i int) float64 { return p.buf[i] }

// first returns the k-rate value of the current quantum.
func (p *Param) first() float64 { return p.buf[0] }
