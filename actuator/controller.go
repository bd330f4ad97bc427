// Package actuator models the bench actuator motion profile: a feedforward
// follower of the target motion S(t) = S0*sin(omega*t) with velocity and
// acceleration ceilings, integrated step by step at the service execution
// interval. The digital twin runs one controller per axis and re-phases it
// against measured bench state.
package actuator

import (
	"math"
)

// headroom applied over the nominal velocity/acceleration limits.
const headroom = 1.1

// rk4Substeps per execution interval. The dynamics are smooth, a fixed-step
// integrator at this resolution stays well under the bench tolerances.
const rk4Substeps = 64

// Controller follows a sinusoidal load/displacement target on one axis.
type Controller struct {
	pos float64
	vel float64

	amp      float64 // target amplitude [kN or mm]
	freq     float64 // angular frequency [rad/s]
	vMax     float64
	aMax     float64
	interval float64 // integration interval [s]
}

// New returns a controller targeting amplitude amp with the given period in
// minutes, stepped at interval seconds.
func New(amp, periodMinutes, interval float64) *Controller {
	c := &Controller{amp: amp, interval: interval}
	c.SetPeriod(periodMinutes)
	return c
}

// Position returns the current profile position.
func (c *Controller) Position() float64 { return c.pos }

// Velocity returns the current profile velocity.
func (c *Controller) Velocity() float64 { return c.vel }

// SetAmplitude sets the target amplitude and recomputes the motion limits.
func (c *Controller) SetAmplitude(amp float64) {
	c.amp = amp
	c.updateLimits()
}

// SetFrequency sets the target frequency in RPM.
func (c *Controller) SetFrequency(rpm float64) {
	c.freq = rpm / 60
	c.updateLimits()
}

// SetPeriod sets the target period in minutes.
func (c *Controller) SetPeriod(minutes float64) {
	c.freq = (2 * math.Pi / 60) / minutes
	c.updateLimits()
}

func (c *Controller) updateLimits() {
	c.vMax = math.Abs(c.amp*c.freq) * headroom
	c.aMax = c.vMax * c.freq * headroom
}

// Step advances the profile by one execution interval and returns the new
// position.
func (c *Controller) Step() float64 {
	h := c.interval / rk4Substeps
	for i := 0; i < rk4Substeps; i++ {
		c.pos, c.vel = rk4(c.pos, c.vel, h, c.derivative)
	}
	return c.pos
}

// Calibrate snaps the profile position to a measured bench value and
// re-phases the velocity to the target motion at that position.
func (c *Controller) Calibrate(measured float64) {
	c.pos = measured
	ts := c.timeScale(c.pos, c.vel)
	v0 := c.amp * c.freq
	c.vel = v0 * c.freq * math.Cos(c.freq*ts)
}

// timeScale recovers the phase time of the target motion from a position and
// the sign of the velocity.
func (c *Controller) timeScale(s, v float64) float64 {
	ts := 0.0
	if math.Abs(s/c.amp) <= 1 {
		ts = math.Asin(s/c.amp) / c.freq
	}
	if v < 0 {
		ts = math.Pi/c.freq - ts
	}
	return ts
}

// derivative is the bench ODE right-hand side: velocity matching against the
// sinusoidal target with asymmetric acceleration clipping and amplitude
// overshoot pushback.
func (c *Controller) derivative(s, v float64) (ds, dv float64) {
	ts := c.timeScale(s, v)

	v0 := c.amp * c.freq
	a0 := v0 * c.freq

	vTarget := v0 * math.Cos(c.freq*ts)
	aTarget := -a0 * math.Sin(c.freq*ts)

	// Scale amplitude if target velocity exceeds limit.
	scale := 1.0
	if v != 0 {
		scale = vTarget / v
	}
	if aTarget == 0 && vTarget != v {
		aTarget = vTarget
	}
	aTarget = aTarget*scale + (vTarget - v)

	// Push back toward the amplitude envelope on overshoot.
	if math.Abs(s) >= c.amp {
		if s > 0 {
			aTarget = -(math.Abs(s) - c.amp)
		} else {
			aTarget = math.Abs(s) - c.amp
		}
	}

	aMaxPos, aMaxNeg := c.aMax, -c.aMax*2
	if s <= 0 {
		aMaxPos, aMaxNeg = c.aMax*2, -c.aMax
	}

	v = clamp(v, -c.vMax, c.vMax)
	a := clamp(aTarget, aMaxNeg, aMaxPos)
	return v, a
}

func rk4(s, v, h float64, f func(s, v float64) (ds, dv float64)) (float64, float64) {
	k1s, k1v := f(s, v)
	k2s, k2v := f(s+h/2*k1s, v+h/2*k1v)
	k3s, k3v := f(s+h/2*k2s, v+h/2*k2v)
	k4s, k4v := f(s+h*k3s, v+h*k3v)
	return s + h/6*(k1s+2*k2s+2*k3s+k4s),
		v + h/6*(k1v+2*k2v+2*k3v+k4v)
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(x, lo))
}
