// Package mesh builds the triangle meshes of the bench scene nodes. The
// specimen beam is subdivided longitudinally so the bend deformation reads as
// a smooth curve rather than a sheared box.
package mesh

import (
	"math"

	"github.com/au-dtlab/benchviz/internal/d3"
	"github.com/au-dtlab/benchviz/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangle soup with outward-facing windings.
type Mesh []render.Triangle

// Deform returns a copy of the mesh with f applied to every vertex. Normals
// are implicit in the winding, so no further fixup is needed for flat shading.
func (m Mesh) Deform(f func(r3.Vec) r3.Vec) Mesh {
	out := make(Mesh, len(m))
	for i, t := range m {
		out[i] = render.Triangle{V: [3]r3.Vec{f(t.V[0]), f(t.V[1]), f(t.V[2])}}
	}
	return out
}

// Translate returns a copy of the mesh offset by v.
func (m Mesh) Translate(v r3.Vec) Mesh {
	return m.Deform(func(p r3.Vec) r3.Vec { return r3.Add(p, v) })
}

// Bounds returns the axis aligned bounding box of the mesh.
func (m Mesh) Bounds() d3.Box {
	if len(m) == 0 {
		return d3.Box{}
	}
	bb := d3.Box{Min: m[0].V[0], Max: m[0].V[0]}
	for _, t := range m {
		for _, v := range t.V {
			bb = bb.Include(v)
		}
	}
	return bb
}

// Beam returns a box of the given size centered at the origin, subdivided
// into segments along the X axis. segments must be 1 or larger.
func Beam(size r3.Vec, segments int) Mesh {
	if segments < 1 {
		panic("segments must be 1 or larger")
	}
	hx, hy, hz := size.X/2, size.Y/2, size.Z/2
	m := make(Mesh, 0, 8*segments+4)
	for i := 0; i < segments; i++ {
		x0 := -hx + size.X*float64(i)/float64(segments)
		x1 := -hx + size.X*float64(i+1)/float64(segments)
		// +z, -z, +y, -y faces of the segment, wound outward.
		m = quad(m,
			r3.Vec{X: x0, Y: -hy, Z: hz}, r3.Vec{X: x1, Y: -hy, Z: hz},
			r3.Vec{X: x1, Y: hy, Z: hz}, r3.Vec{X: x0, Y: hy, Z: hz})
		m = quad(m,
			r3.Vec{X: x0, Y: hy, Z: -hz}, r3.Vec{X: x1, Y: hy, Z: -hz},
			r3.Vec{X: x1, Y: -hy, Z: -hz}, r3.Vec{X: x0, Y: -hy, Z: -hz})
		m = quad(m,
			r3.Vec{X: x0, Y: hy, Z: hz}, r3.Vec{X: x1, Y: hy, Z: hz},
			r3.Vec{X: x1, Y: hy, Z: -hz}, r3.Vec{X: x0, Y: hy, Z: -hz})
		m = quad(m,
			r3.Vec{X: x0, Y: -hy, Z: -hz}, r3.Vec{X: x1, Y: -hy, Z: -hz},
			r3.Vec{X: x1, Y: -hy, Z: hz}, r3.Vec{X: x0, Y: -hy, Z: hz})
	}
	// end caps
	m = quad(m,
		r3.Vec{X: hx, Y: -hy, Z: -hz}, r3.Vec{X: hx, Y: hy, Z: -hz},
		r3.Vec{X: hx, Y: hy, Z: hz}, r3.Vec{X: hx, Y: -hy, Z: hz})
	m = quad(m,
		r3.Vec{X: -hx, Y: -hy, Z: -hz}, r3.Vec{X: -hx, Y: -hy, Z: hz},
		r3.Vec{X: -hx, Y: hy, Z: hz}, r3.Vec{X: -hx, Y: hy, Z: -hz})
	return m
}

// Box returns an unsubdivided box of the given size centered at the origin.
func Box(size r3.Vec) Mesh {
	return Beam(size, 1)
}

// Sphere returns a UV sphere of the given radius centered at the origin.
// slices and stacks control the tessellation and must be 3 and 2 or larger.
func Sphere(radius float64, slices, stacks int) Mesh {
	if slices < 3 || stacks < 2 {
		panic("sphere tessellation too coarse")
	}
	at := func(i, j int) r3.Vec {
		theta := 2 * math.Pi * float64(i) / float64(slices)
		phi := math.Pi * float64(j) / float64(stacks)
		sp, cp := math.Sincos(phi)
		st, ct := math.Sincos(theta)
		return r3.Vec{
			X: radius * sp * ct,
			Y: radius * sp * st,
			Z: radius * cp,
		}
	}
	m := make(Mesh, 0, 2*slices*stacks)
	for j := 0; j < stacks; j++ {
		for i := 0; i < slices; i++ {
			v00 := at(i, j)
			v01 := at(i, j+1)
			v10 := at(i+1, j)
			v11 := at(i+1, j+1)
			if j != stacks-1 {
				m = append(m, render.Triangle{V: [3]r3.Vec{v00, v01, v11}})
			}
			if j != 0 {
				m = append(m, render.Triangle{V: [3]r3.Vec{v00, v11, v10}})
			}
		}
	}
	return m
}

func quad(m Mesh, a, b, c, d r3.Vec) Mesh {
	return append(m,
		render.Triangle{V: [3]r3.Vec{a, b, c}},
		render.Triangle{V: [3]r3.Vec{a, c, d}},
	)
}
