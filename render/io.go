package render

import "io"

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like the io.ReadAll implementation.
func RenderAll(r Renderer) ([]Triangle, error) {
	var err error
	var nt int
	result := make([]Triangle, 0, 1<<12)
	buf := make([]Triangle, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		if err != nil {
			break
		}
		result = append(result, buf[:nt]...)
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

// sliceRenderer streams an in-memory triangle slice through the Renderer
// interface so meshes built eagerly can feed the STL writer.
type sliceRenderer struct {
	buf []Triangle
}

// NewSliceRenderer returns a Renderer reading from model.
func NewSliceRenderer(model []Triangle) Renderer {
	return &sliceRenderer{buf: model}
}

func (b *sliceRenderer) ReadTriangles(t []Triangle) (int, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}
