package benchviz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SpecimenLength is the clamped length of the test specimen in millimetres.
// The bench reports vertical load as a moment-like reading taken over this
// length; dividing by it recovers the small-angle tilt of the actuator pivot.
const SpecimenLength = 2000.0

// ActuatorAngle converts a vertical force/moment reading into the actuator
// pivot rotation in radians. Small readings behave linearly (atan(x) ~= x),
// large readings saturate instead of spinning the pivot.
func ActuatorAngle(vertical float64) float64 {
	return math.Atan2(vertical, SpecimenLength)
}

// IndicatorOffset maps the horizontal and vertical displacement readings to
// the indicator sphere offset from its rest position. Horizontal displacement
// moves the sphere along the specimen axis, vertical displacement moves it
// along the load axis.
func IndicatorOffset(horizontal, vertical float64) r3.Vec {
	return r3.Vec{X: horizontal, Z: vertical}
}
