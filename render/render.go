// Package render turns bench scene geometry into files: binary STL meshes and
// software-rasterized PNG snapshots. It stands in for the game-engine viewport
// of the original visualization.
package render

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a 3D triangle defined by its three vertices.
type Triangle struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle from its winding order.
func (t Triangle) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Centroid returns the center of mass of the triangle.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(r3.Add(t.V[0], t.V[1]), t.V[2]))
}

// Degenerate returns true if the triangle has near identical vertices.
func (t Triangle) Degenerate(tol float64) bool {
	equal := func(a, b r3.Vec) bool {
		d := r3.Sub(a, b)
		return d.X*d.X+d.Y*d.Y+d.Z*d.Z <= tol*tol
	}
	return equal(t.V[0], t.V[1]) || equal(t.V[1], t.V[2]) || equal(t.V[2], t.V[0])
}

// Renderer is a stream of model triangles.
type Renderer interface {
	// ReadTriangles writes triangles into the argument buffer and returns
	// the number written. io.EOF signals the end of the model.
	ReadTriangles(t []Triangle) (int, error)
}

// Object is a renderable group of triangles with a single color.
type Object struct {
	Triangles []Triangle
	Color     color.RGBA
}
