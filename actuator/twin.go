package actuator

import (
	"sync"
	"time"

	"github.com/au-dtlab/benchviz/bus"
)

// Twin mirrors the bench actuators: a load-driven horizontal controller and
// a displacement-driven vertical one, stepped in lockstep, reconfigured by
// control commands and re-phased against measured bench state. The methods
// are safe for concurrent use; the dispatch loop and the step ticker run on
// different goroutines.
type Twin struct {
	mu         sync.Mutex
	horizontal *Controller
	vertical   *Controller
	forceOn    bool
}

// NewTwin builds the two axis controllers. Amplitudes are the wanted
// horizontal load and vertical displacement, periods are in minutes and the
// interval in seconds.
func NewTwin(horizontalAmp, verticalAmp, horizontalPeriod, verticalPeriod, interval float64) *Twin {
	return &Twin{
		horizontal: New(horizontalAmp, horizontalPeriod, interval),
		vertical:   New(verticalAmp, verticalPeriod, interval),
	}
}

// ForceOn reports whether the profiles are running.
func (t *Twin) ForceOn() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.forceOn
}

// HorizontalPosition returns the current horizontal load target.
func (t *Twin) HorizontalPosition() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.horizontal.Position()
}

// VerticalPosition returns the current vertical displacement target.
func (t *Twin) VerticalPosition() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vertical.Position()
}

// ApplyCommand applies a control command: force on/off, amplitude and
// period updates per axis. Absent fields leave their setting untouched.
func (t *Twin) ApplyCommand(m bus.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := m.Fields[bus.FieldForces]; ok {
		t.forceOn = m.Bool(bus.FieldForces)
	}
	if _, ok := m.Fields[bus.FieldHorizontalForce]; ok {
		t.horizontal.SetAmplitude(m.Float(bus.FieldHorizontalForce))
	}
	if _, ok := m.Fields[bus.FieldVerticalDisplacement]; ok {
		t.vertical.SetAmplitude(m.Float(bus.FieldVerticalDisplacement))
	}
	if _, ok := m.Fields[bus.FieldHorizontalPeriod]; ok {
		t.horizontal.SetPeriod(m.Float(bus.FieldHorizontalPeriod))
	}
	if _, ok := m.Fields[bus.FieldVerticalPeriod]; ok {
		t.vertical.SetPeriod(m.Float(bus.FieldVerticalPeriod))
	}
}

// CalibrateFrom re-phases both controllers against a measured bench state
// sample: the horizontal axis snaps to the measured load, the vertical one
// to the measured displacement. Ignored while the force is off.
func (t *Twin) CalibrateFrom(m bus.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.forceOn {
		return
	}
	t.horizontal.Calibrate(m.Float(bus.FieldHorizontalForce))
	t.vertical.Calibrate(m.Float(bus.FieldVerticalDisplacement))
}

// Step advances both profiles by one execution interval and returns the
// feedforward state sample to publish. With the force off the profiles hold
// and the targets read zero.
func (t *Twin) Step(now time.Time) bus.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	var load, displacement, on float64
	if t.forceOn {
		load = t.horizontal.Step()
		displacement = t.vertical.Step()
		on = 1.0
	}
	return bus.Message{
		Measurement: bus.MeasurementController,
		Time:        now.UnixNano(),
		Tags:        map[string]string{"source": "controller"},
		Fields: map[string]any{
			bus.FieldHorizontalForce:      load,
			bus.FieldVerticalDisplacement: displacement,
			bus.FieldForceOn:              on,
		},
	}
}
