package benchviz_test

import (
	"math"
	"testing"

	"github.com/au-dtlab/benchviz"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-12

func TestBendWeightBoundaries(t *testing.T) {
	for _, blend := range []float64{0, 0.05, 0.1, 0.25, 0.5} {
		b := benchviz.BendParams{EdgeBlend: blend}
		if w := b.Weight(0); w != 0 {
			t.Errorf("blend=%g: weight at t=0 got %g, want 0", blend, w)
		}
		if w := b.Weight(1); w != 0 {
			t.Errorf("blend=%g: weight at t=1 got %g, want 0", blend, w)
		}
		if w := b.Weight(0.5); !benchviz.EqualFloat64(w, 1, tol) {
			t.Errorf("blend=%g: weight at t=0.5 got %g, want 1", blend, w)
		}
	}
}

func TestBendWeightZeroBlendPlateau(t *testing.T) {
	b := benchviz.BendParams{EdgeBlend: 0}
	for _, tt := range []float64{1e-9, 0.1, 0.3, 0.5, 0.7, 0.9, 1 - 1e-9} {
		if w := b.Weight(tt); w != 1 {
			t.Errorf("weight at t=%g got %g, want 1", tt, w)
		}
	}
}

func TestBendWeightRamp(t *testing.T) {
	const blend = 0.2
	b := benchviz.BendParams{EdgeBlend: blend}
	// Cubic Hermite ramp: half strength midway into the blend window.
	if w := b.Weight(blend / 2); !benchviz.EqualFloat64(w, 0.5, tol) {
		t.Errorf("weight midway up the ramp got %g, want 0.5", w)
	}
	if w := b.Weight(1 - blend/2); !benchviz.EqualFloat64(w, 0.5, tol) {
		t.Errorf("weight midway down the ramp got %g, want 0.5", w)
	}
	// Monotone rising over the window.
	prev := -1.0
	for tt := 0.0; tt <= blend+1e-9; tt += blend / 16 {
		w := b.Weight(tt)
		if w < prev {
			t.Fatalf("weight not monotone over rising window at t=%g", tt)
		}
		prev = w
	}
}

func TestBendZeroStrengthIsIdentity(t *testing.T) {
	b := benchviz.BendParams{
		Origin:      r3.Vec{X: 0.5, Y: -1, Z: 2},
		FixedStartX: -2,
		FixedEndX:   2,
		EdgeBlend:   0.1,
	}
	for _, p := range []r3.Vec{
		{},
		{X: 1, Y: 2, Z: 3},
		{X: -1.5, Y: 0.25, Z: -0.75},
		{X: 3, Y: -2, Z: 1}, // outside the anchors
	} {
		got := b.Transform(p)
		if !vecEqual(got, p, tol) {
			t.Errorf("Transform(%v) got %v, want identity", p, got)
		}
	}
}

// A vertex on the bend axis (zero y,z offset from the origin) stays put no
// matter the angle: rotating a zero-length vector does nothing.
func TestBendOnAxisVertex(t *testing.T) {
	b := benchviz.BendParams{
		FixedStartX: -2,
		FixedEndX:   2,
		EdgeBlend:   0.1,
		StrengthH:   1,
	}
	p := r3.Vec{X: 1}
	got := b.Transform(p)
	want := r3.Vec{X: 1}
	if !vecEqual(got, want, tol) {
		t.Errorf("Transform(%v) got %v, want %v", p, got, want)
	}
}

func TestBendConcreteRotation(t *testing.T) {
	b := benchviz.BendParams{
		FixedStartX: -2,
		FixedEndX:   2,
		EdgeBlend:   0.1,
		StrengthH:   1,
	}
	// t = 0.75, fully inside the plateau, weight 1, angleH = 1*1*0.01.
	p := r3.Vec{X: 1, Y: 1, Z: 0}
	got := b.Transform(p)
	s, c := math.Sincos(0.01)
	want := r3.Vec{X: 1, Y: c, Z: s}
	if !vecEqual(got, want, tol) {
		t.Errorf("Transform(%v) got %v, want %v", p, got, want)
	}
}

// Shifting the bend origin together with the input vertex shifts the output
// by the same amount, as long as the anchors pin the same normalized t.
func TestBendOriginTranslation(t *testing.T) {
	shift := r3.Vec{Y: 3, Z: -1.5}
	b0 := benchviz.BendParams{
		FixedStartX: -2,
		FixedEndX:   2,
		EdgeBlend:   0.1,
		StrengthH:   2,
		StrengthV:   0.5,
	}
	b1 := b0
	b1.Origin = r3.Add(b0.Origin, shift)
	p := r3.Vec{X: 0.8, Y: 0.3, Z: -0.2}
	got := b1.Transform(r3.Add(p, shift))
	want := r3.Add(b0.Transform(p), shift)
	if !vecEqual(got, want, tol) {
		t.Errorf("translated transform got %v, want %v", got, want)
	}
}

// The horizontal rotation feeds the z offset that the vertical angle is
// computed from, so swapping the two strengths is not symmetric.
func TestBendRotationOrderMatters(t *testing.T) {
	base := benchviz.BendParams{
		FixedStartX: -2,
		FixedEndX:   2,
		EdgeBlend:   0.1,
	}
	hv := base
	hv.StrengthH, hv.StrengthV = 40, 25
	vh := base
	vh.StrengthH, vh.StrengthV = 25, 40
	p := r3.Vec{X: 1, Y: 0.5, Z: 0.7}
	a, b := hv.Transform(p), vh.Transform(p)
	if vecEqual(a, b, 1e-9) {
		t.Errorf("expected order-dependent results, both gave %v", a)
	}
}

func vecEqual(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}
