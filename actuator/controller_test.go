package actuator_test

import (
	"math"
	"testing"

	"github.com/au-dtlab/benchviz/actuator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimits(t *testing.T) {
	c := actuator.New(5, 1, 0.1)
	// Period of one minute.
	freq := 2 * math.Pi / 60
	vmax := maxVelocity(c, 2000)
	require.LessOrEqual(t, vmax, 5*freq*1.1*1.05, "velocity ceiling")
	require.GreaterOrEqual(t, vmax, 5*freq*0.8,
		"profile velocity should approach the target peak")
}

// maxVelocity steps the controller n times and returns the largest observed
// velocity magnitude.
func maxVelocity(c *actuator.Controller, n int) float64 {
	vmax := 0.0
	for i := 0; i < n; i++ {
		c.Step()
		if v := math.Abs(c.Velocity()); v > vmax {
			vmax = v
		}
	}
	return vmax
}

func TestStepFollowsTarget(t *testing.T) {
	c := actuator.New(10, 1, 0.1)

	require.Zero(t, c.Position())
	first := c.Step()
	assert.Greater(t, first, 0.0, "profile moves toward positive target from rest")

	// One full period. The profile must stay within a small overshoot of the
	// amplitude envelope the whole way and come back down.
	min, max := first, first
	for i := 0; i < 600; i++ {
		p := c.Step()
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	assert.LessOrEqual(t, max, 10*1.05, "envelope overshoot")
	assert.GreaterOrEqual(t, min, -10*1.05, "envelope overshoot")
	assert.Greater(t, max, 5.0, "profile should approach the amplitude")
}

func TestCalibrate(t *testing.T) {
	c := actuator.New(10, 1, 0.1)
	for i := 0; i < 50; i++ {
		c.Step()
	}

	c.Calibrate(2.5)
	assert.Equal(t, 2.5, c.Position())

	freq := 2 * math.Pi / 60
	ts := math.Asin(2.5/10) / freq
	want := 10 * freq * freq * math.Cos(freq*ts)
	assert.InDelta(t, want, c.Velocity(), 1e-9)
}

func TestSetAmplitudeRescalesProfile(t *testing.T) {
	c := actuator.New(10, 1, 0.1)
	for i := 0; i < 300; i++ {
		c.Step()
	}
	c.SetAmplitude(3)
	for i := 0; i < 1200; i++ {
		c.Step()
	}
	assert.LessOrEqual(t, math.Abs(c.Position()), 3*1.1,
		"profile settles inside the reduced envelope")
}
