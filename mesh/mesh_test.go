package mesh_test

import (
	"testing"

	"github.com/au-dtlab/benchviz"
	"github.com/au-dtlab/benchviz/internal/d3"
	"github.com/au-dtlab/benchviz/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestBeamTriangleCount(t *testing.T) {
	for _, segments := range []int{1, 2, 16} {
		m := mesh.Beam(r3.Vec{X: 200, Y: 40, Z: 40}, segments)
		want := 8*segments + 4
		if len(m) != want {
			t.Errorf("segments=%d: got %d triangles, want %d", segments, len(m), want)
		}
	}
}

func TestBeamBounds(t *testing.T) {
	size := r3.Vec{X: 200, Y: 40, Z: 30}
	bb := mesh.Beam(size, 8).Bounds()
	if !d3.EqualWithin(bb.Size(), size, 1e-12) {
		t.Errorf("bounds size got %v, want %v", bb.Size(), size)
	}
	if !d3.EqualWithin(bb.Center(), r3.Vec{}, 1e-12) {
		t.Errorf("bounds center got %v, want origin", bb.Center())
	}
}

// All shapes here are convex and centered on the origin, so an outward
// winding means every triangle normal points away from the origin.
func TestOutwardWindings(t *testing.T) {
	for _, tc := range []struct {
		name string
		m    mesh.Mesh
	}{
		{"beam", mesh.Beam(r3.Vec{X: 200, Y: 40, Z: 40}, 16)},
		{"box", mesh.Box(r3.Vec{X: 1, Y: 2, Z: 3})},
		{"sphere", mesh.Sphere(25, 24, 12)},
	} {
		for i, tri := range tc.m {
			if tri.Degenerate(1e-12) {
				t.Errorf("%s: triangle %d degenerate", tc.name, i)
				continue
			}
			if r3.Dot(tri.Normal(), tri.Centroid()) <= 0 {
				t.Errorf("%s: triangle %d wound inward", tc.name, i)
			}
		}
	}
}

func TestSphereOnSurface(t *testing.T) {
	const radius = 25.0
	m := mesh.Sphere(radius, 16, 8)
	if want := 2 * 16 * (8 - 1); len(m) != want {
		t.Fatalf("got %d triangles, want %d", len(m), want)
	}
	for i, tri := range m {
		for _, v := range tri.V {
			if !benchviz.EqualFloat64(r3.Norm(v), radius, 1e-9) {
				t.Fatalf("triangle %d: vertex %v not on sphere surface", i, v)
			}
		}
	}
}

func TestDeformIdentityAndTranslate(t *testing.T) {
	m := mesh.Beam(r3.Vec{X: 10, Y: 1, Z: 1}, 4)
	id := m.Deform(func(p r3.Vec) r3.Vec { return p })
	for i := range m {
		if m[i] != id[i] {
			t.Fatalf("identity deform changed triangle %d", i)
		}
	}
	shift := r3.Vec{X: 1, Y: -2, Z: 3}
	moved := m.Translate(shift)
	wantCenter := shift
	if got := moved.Bounds().Center(); !d3.EqualWithin(got, wantCenter, 1e-12) {
		t.Errorf("translated center got %v, want %v", got, wantCenter)
	}
}

// Bending a subdivided beam with the specimen bend keeps the anchors put and
// moves the middle.
func TestBeamBend(t *testing.T) {
	size := r3.Vec{X: 4, Y: 0.5, Z: 0.5}
	b := benchviz.BendParams{
		FixedStartX: -2,
		FixedEndX:   2,
		EdgeBlend:   0.1,
		StrengthV:   80,
	}
	m := mesh.Beam(size, 32)
	bent := m.Deform(b.Transform)
	var moved int
	for i := range m {
		for j := range m[i].V {
			p, q := m[i].V[j], bent[i].V[j]
			if p.X == b.FixedStartX || p.X == b.FixedEndX {
				if !d3.EqualWithin(p, q, 1e-12) {
					t.Fatalf("anchored vertex %v moved to %v", p, q)
				}
			} else if !d3.EqualWithin(p, q, 1e-12) {
				moved++
			}
		}
	}
	if moved == 0 {
		t.Error("bend with nonzero strength moved no interior vertices")
	}
}
