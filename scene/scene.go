// Package scene mirrors the bench visualization scene: a bending specimen
// beam, an actuator arm on a pivot, a displacement indicator sphere and an
// overlay of numeric readouts. Inbound state samples mutate node properties;
// snapshots rasterize the result.
//
// The scene is not safe for concurrent use: callers serialize Update and
// snapshot calls on one goroutine, the way the bus consumer dispatches.
package scene

import (
	"fmt"
	"image/color"
	"io"

	"github.com/au-dtlab/benchviz"
	"github.com/au-dtlab/benchviz/bus"
	"github.com/au-dtlab/benchviz/internal/d3"
	"github.com/au-dtlab/benchviz/mesh"
	"github.com/au-dtlab/benchviz/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// State is one bench state sample as the visualization consumes it.
type State struct {
	ForceOn                bool
	HorizontalForce        float64
	VerticalForce          float64
	HorizontalDisplacement float64
	VerticalDisplacement   float64
}

// SampleFrom extracts a State from a bus message. ok is false for
// measurements other than the emulator's, which the scene ignores.
func SampleFrom(m bus.Message) (st State, ok bool) {
	if m.Measurement != bus.MeasurementEmulator {
		return State{}, false
	}
	return State{
		ForceOn:                m.Bool(bus.FieldForceOn),
		HorizontalForce:        m.Float(bus.FieldHorizontalForce),
		VerticalForce:          m.Float(bus.FieldVerticalForce),
		HorizontalDisplacement: m.Float(bus.FieldHorizontalDisplacement),
		VerticalDisplacement:   m.Float(bus.FieldVerticalDisplacement),
	}, true
}

// Readouts are the overlay labels, formatted to 4 decimal places.
type Readouts struct {
	HorizontalForce        string
	VerticalForce          string
	HorizontalDisplacement string
	VerticalDisplacement   string
}

// Config sizes the scene nodes. Dimensions are millimetres in bench
// coordinates: X along the specimen, Z along the vertical load axis.
type Config struct {
	// SpecimenSize is the clamped beam; its X extent sets the bend anchors.
	SpecimenSize r3.Vec
	// Segments subdivides the specimen longitudinally so the bend is smooth.
	Segments int
	// EdgeBlend is the bend easing fraction at each anchor.
	EdgeBlend float64
	// IndicatorRadius is the displacement indicator sphere.
	IndicatorRadius float64
	// IndicatorRest is where the indicator sits with zero displacement.
	IndicatorRest r3.Vec
	// ArmSize and ArmPivot place the actuator arm.
	ArmSize  r3.Vec
	ArmPivot r3.Vec
}

func (c Config) withDefaults() Config {
	if c.SpecimenSize == (r3.Vec{}) {
		c.SpecimenSize = r3.Vec{X: 2000, Y: 100, Z: 100}
	}
	if c.Segments == 0 {
		c.Segments = 64
	}
	if c.EdgeBlend == 0 {
		c.EdgeBlend = 0.1
	}
	if c.IndicatorRadius == 0 {
		c.IndicatorRadius = 40
	}
	if c.IndicatorRest == (r3.Vec{}) {
		c.IndicatorRest = r3.Vec{Z: c.SpecimenSize.Z/2 + 2*c.IndicatorRadius}
	}
	if c.ArmSize == (r3.Vec{}) {
		c.ArmSize = r3.Vec{X: 120, Y: 120, Z: 600}
	}
	if c.ArmPivot == (r3.Vec{}) {
		c.ArmPivot = r3.Vec{X: c.SpecimenSize.X / 2, Z: c.SpecimenSize.Z/2 + c.ArmSize.Z/2}
	}
	return c
}

// Node colors. The arm doubles as the force on/off indicator lamp.
var (
	colorSpecimen  = color.RGBA{R: 0x46, G: 0x89, B: 0x66, A: 0xff}
	colorIndicator = color.RGBA{R: 0x2c, G: 0x3e, B: 0x50, A: 0xff}
	colorForceOn   = color.RGBA{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff}
	colorForceOff  = color.RGBA{R: 0x7f, G: 0x8c, B: 0x8d, A: 0xff}
)

// Scene holds the current pose of every node.
type Scene struct {
	cfg Config

	// rest meshes, deformed per snapshot
	specimen  mesh.Mesh
	arm       mesh.Mesh
	indicator mesh.Mesh

	bend         benchviz.BendParams
	pivotAngle   float64
	indicatorPos r3.Vec
	forceOn      bool
	last         State
}

// New builds the scene at rest.
func New(cfg Config) *Scene {
	cfg = cfg.withDefaults()
	return &Scene{
		cfg:       cfg,
		specimen:  mesh.Beam(cfg.SpecimenSize, cfg.Segments),
		arm:       mesh.Box(cfg.ArmSize),
		indicator: mesh.Sphere(cfg.IndicatorRadius, 24, 12),
		bend: benchviz.BendParams{
			FixedStartX: -cfg.SpecimenSize.X / 2,
			FixedEndX:   cfg.SpecimenSize.X / 2,
			EdgeBlend:   cfg.EdgeBlend,
		},
		indicatorPos: cfg.IndicatorRest,
	}
}

// Update applies one state sample to the scene nodes.
func (s *Scene) Update(st State) {
	s.forceOn = st.ForceOn
	s.bend.StrengthH = st.HorizontalForce
	s.bend.StrengthV = st.VerticalForce
	s.pivotAngle = benchviz.ActuatorAngle(st.VerticalForce)
	s.indicatorPos = r3.Add(s.cfg.IndicatorRest,
		benchviz.IndicatorOffset(st.HorizontalDisplacement, st.VerticalDisplacement))
	s.last = st
}

// Readouts formats the overlay labels for the last applied sample.
func (s *Scene) Readouts() Readouts {
	return Readouts{
		HorizontalForce:        fmt.Sprintf("%.4f", s.last.HorizontalForce),
		VerticalForce:          fmt.Sprintf("%.4f", s.last.VerticalForce),
		HorizontalDisplacement: fmt.Sprintf("%.4f", s.last.HorizontalDisplacement),
		VerticalDisplacement:   fmt.Sprintf("%.4f", s.last.VerticalDisplacement),
	}
}

// WriteTo writes the labels as "name: value" lines, the text overlay that
// accompanies every snapshot.
func (r Readouts) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"horizontal_force: %s\nvertical_force: %s\nhorizontal_displacement: %s\nvertical_displacement: %s\n",
		r.HorizontalForce, r.VerticalForce,
		r.HorizontalDisplacement, r.VerticalDisplacement)
	return int64(n), err
}

// Bend returns the specimen bend parameters for the current pose.
func (s *Scene) Bend() benchviz.BendParams { return s.bend }

// PivotAngle returns the actuator pivot rotation in radians.
func (s *Scene) PivotAngle() float64 { return s.pivotAngle }

// IndicatorPosition returns the indicator sphere center.
func (s *Scene) IndicatorPosition() r3.Vec { return s.indicatorPos }

// Objects returns the posed scene geometry for rendering.
func (s *Scene) Objects() []render.Object {
	armColor := colorForceOff
	if s.forceOn {
		armColor = colorForceOn
	}
	pivot := r3.NewRotation(s.pivotAngle, r3.Vec{Y: 1})
	arm := s.arm.Deform(func(p r3.Vec) r3.Vec {
		return r3.Add(pivot.Rotate(p), s.cfg.ArmPivot)
	})
	return []render.Object{
		{Triangles: s.specimen.Deform(s.bend.Transform), Color: colorSpecimen},
		{Triangles: arm, Color: armColor},
		{Triangles: s.indicator.Translate(s.indicatorPos), Color: colorIndicator},
	}
}

// View frames all scene nodes from an isometric-ish eye position.
func (s *Scene) View() render.View {
	objects := s.Objects()
	first := objects[0].Triangles[0].V[0]
	box := d3.Box{Min: first, Max: first}
	for _, o := range objects {
		for _, t := range o.Triangles {
			for _, v := range t.V {
				box = box.Include(v)
			}
		}
	}
	center := box.Center()
	diag := r3.Norm(box.Size())
	return render.View{
		Lookat: center,
		Up:     r3.Vec{Z: 1},
		Eyepos: r3.Add(center, r3.Scale(diag, r3.Unit(d3.Elem(1)))),
		Near:   diag / 100,
		Far:    diag * 10,
	}
}

// SnapshotPNG rasterizes the current pose into w.
func (s *Scene) SnapshotPNG(w io.Writer, width, height int) error {
	return render.SnapshotPNG(w, s.Objects(), s.View(), width, height)
}

// WriteSTL writes the posed scene geometry as a binary STL model.
func (s *Scene) WriteSTL(w io.Writer) error {
	var model []render.Triangle
	for _, o := range s.Objects() {
		model = append(model, o.Triangles...)
	}
	return render.WriteSTL(w, model)
}
