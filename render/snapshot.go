package render

import (
	"errors"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the snapshot camera.
type View struct {
	// Lookat is what position (point) to look at.
	Lookat r3.Vec
	// Up is which way is up (direction).
	Up r3.Vec
	// Eyepos is where the camera/eye is located at (point).
	Eyepos r3.Vec
	Far    float64
	Near   float64
	// FOV is the vertical field of view in degrees. Zero means 30.
	FOV float64
}

// supersample is the oversampling factor rendered before downscaling for
// antialiasing.
const supersample = 2

// SnapshotPNG rasterizes the scene objects with a phong shader and writes the
// result to w as a PNG of the given pixel dimensions.
func SnapshotPNG(w io.Writer, objects []Object, view View, width, height int) error {
	if len(objects) == 0 {
		return errors.New("no objects to render")
	}
	fov := view.FOV
	if fov == 0 {
		fov = 30
	}

	var (
		eye    = fauxgl.V(view.Eyepos.X, view.Eyepos.Y, view.Eyepos.Z)
		center = fauxgl.V(view.Lookat.X, view.Lookat.Y, view.Lookat.Z)
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)

	context := fauxgl.NewContext(width*supersample, height*supersample)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fov, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	context.Shader = shader

	for _, obj := range objects {
		if len(obj.Triangles) == 0 {
			continue
		}
		shader.ObjectColor = fauxgl.MakeColor(obj.Color)
		context.DrawMesh(fauxglMesh(obj.Triangles))
	}

	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(uint(width), uint(height), image, resize.Bilinear)
	return png.Encode(w, image)
}

func fauxglMesh(model []Triangle) *fauxgl.Mesh {
	triangles := make([]*fauxgl.Triangle, len(model))
	for i, t := range model {
		triangles[i] = fauxgl.NewTriangleForPoints(
			fauxgl.V(t.V[0].X, t.V[0].Y, t.V[0].Z),
			fauxgl.V(t.V[1].X, t.V[1].Y, t.V[1].Z),
			fauxgl.V(t.V[2].X, t.V[2].Y, t.V[2].Z),
		)
	}
	return fauxgl.NewTriangleMesh(triangles)
}
