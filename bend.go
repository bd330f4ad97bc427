// Package benchviz models the visible state of a 2-DOF hybrid test bench
// digital twin: the bending specimen, the actuator pivot and the displacement
// indicator, all driven by state samples received over a message bus.
//
// The geometry here is closed-form per-vertex math. There is no hidden state:
// a BendParams value plus a vertex in specimen-local coordinates fully
// determine the deformed vertex.
package benchviz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// bendScale converts bend strength units (force readings from the bench) to
// radians per unit of longitudinal offset.
const bendScale = 0.01

// BendParams parameterize the two-axis elastic bending of the specimen mesh.
// The bend vanishes at the two anchor planes x = FixedStartX and x = FixedEndX
// where the specimen is clamped, ramping up over an EdgeBlend fraction of the
// anchor-to-anchor span at each end.
//
// FixedStartX < FixedEndX by convention. Coincident anchors make the
// longitudinal parameter a division by zero; callers must keep them apart.
// EdgeBlend is a fraction in [0, 0.5]. Values above 0.5 overlap the two
// easing windows so the interior weight peaks below 1. Neither condition is
// validated, matching the shader uniforms this models.
type BendParams struct {
	// Origin is the bend origin in specimen-local coordinates.
	Origin r3.Vec
	// StrengthH and StrengthV scale the horizontal and vertical bend angles.
	StrengthH float64
	StrengthV float64
	// FixedStartX and FixedEndX are the clamped anchor planes.
	FixedStartX float64
	FixedEndX   float64
	// EdgeBlend is the fractional width of the easing window at each anchor.
	EdgeBlend float64
}

// Transform maps a specimen-local vertex to its bent position. It is a pure
// function of b and p.
//
// The horizontal rotation is applied to the (y,z) pair before the vertical
// one, and the vertical angle is taken from the already-rotated z offset, so
// the two rotations do not commute for nonzero angles.
func (b BendParams) Transform(p r3.Vec) r3.Vec {
	t := (p.X - b.FixedStartX) / (b.FixedEndX - b.FixedStartX)
	w := b.Weight(t)

	q := r3.Sub(p, b.Origin)
	y, z := q.Y, q.Z

	angleH := q.X * b.StrengthH * bendScale * w
	sh, ch := math.Sincos(angleH)
	y, z = y*ch-z*sh, y*sh+z*ch

	angleV := z * b.StrengthV * bendScale * w
	sv, cv := math.Sincos(angleV)
	y, z = y*cv-z*sv, y*sv+z*cv

	return r3.Add(r3.Vec{X: q.X, Y: y, Z: z}, b.Origin)
}

// Weight returns the bend easing weight at normalized longitudinal position t.
// It is zero at t<=0 and t>=1 and, for EdgeBlend <= 0.5, one over the interior
// plateau, with a cubic Hermite ramp of width EdgeBlend at each end.
func (b BendParams) Weight(t float64) float64 {
	// The anchors and anything beyond them stay clamped regardless of
	// EdgeBlend. This also keeps EdgeBlend == 0 well defined, where the
	// GLSL smoothstep this mirrors divides by zero.
	if t <= 0 || t >= 1 {
		return 0
	}
	return smoothStep(0, b.EdgeBlend, t) * (1 - smoothStep(1-b.EdgeBlend, 1, t))
}

// smoothStep is the GLSL smoothstep, degenerating to a step function when the
// edges coincide instead of dividing by zero.
func smoothStep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x <= edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
