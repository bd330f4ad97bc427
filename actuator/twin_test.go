package actuator_test

import (
	"testing"
	"time"

	"github.com/au-dtlab/benchviz/actuator"
	"github.com/au-dtlab/benchviz/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTwin() *actuator.Twin {
	return actuator.NewTwin(100, 20, 2, 2, 3)
}

func TestTwinStepHoldsWhileForceOff(t *testing.T) {
	tw := newTestTwin()

	m := tw.Step(time.Unix(0, 42))
	assert.Equal(t, bus.MeasurementController, m.Measurement)
	assert.Equal(t, int64(42), m.Time)
	assert.Equal(t, 0.0, m.Float(bus.FieldHorizontalForce))
	assert.Equal(t, 0.0, m.Float(bus.FieldVerticalDisplacement))
	assert.False(t, m.Bool(bus.FieldForceOn))
	assert.Zero(t, tw.HorizontalPosition())
}

func TestTwinStepsAfterForceCommand(t *testing.T) {
	tw := newTestTwin()
	tw.ApplyCommand(bus.Message{Fields: map[string]any{bus.FieldForces: true}})
	require.True(t, tw.ForceOn())

	m := tw.Step(time.Now())
	assert.True(t, m.Bool(bus.FieldForceOn))
	assert.Greater(t, m.Float(bus.FieldHorizontalForce), 0.0,
		"load profile moves toward the positive target")
	assert.Greater(t, m.Float(bus.FieldVerticalDisplacement), 0.0)
	assert.Equal(t, m.Float(bus.FieldHorizontalForce), tw.HorizontalPosition())
}

func TestTwinCommandUpdatesAmplitudes(t *testing.T) {
	tw := newTestTwin()
	tw.ApplyCommand(bus.Message{Fields: map[string]any{
		bus.FieldForces:               true,
		bus.FieldHorizontalForce:      3.0,
		bus.FieldVerticalDisplacement: 1.5,
		bus.FieldVerticalPeriod:       4.0,
	}})

	// A long run settles each profile inside its reduced envelope.
	var m bus.Message
	for i := 0; i < 400; i++ {
		m = tw.Step(time.Now())
	}
	assert.LessOrEqual(t, m.Float(bus.FieldHorizontalForce), 3.0*1.1)
	assert.LessOrEqual(t, m.Float(bus.FieldVerticalDisplacement), 1.5*1.1)
}

func TestTwinCommandLeavesAbsentFieldsAlone(t *testing.T) {
	tw := newTestTwin()
	tw.ApplyCommand(bus.Message{Fields: map[string]any{bus.FieldForces: true}})
	before := tw.Step(time.Now())

	// An empty command must not zero the amplitudes.
	tw.ApplyCommand(bus.Message{Fields: map[string]any{}})
	after := tw.Step(time.Now())
	assert.Greater(t, after.Float(bus.FieldHorizontalForce),
		before.Float(bus.FieldHorizontalForce))
	assert.True(t, tw.ForceOn())
}

func TestTwinCalibrateFromState(t *testing.T) {
	tw := newTestTwin()
	state := bus.Message{
		Measurement: bus.MeasurementEmulator,
		Fields: map[string]any{
			bus.FieldHorizontalForce:      25.0,
			bus.FieldVerticalDisplacement: 4.0,
		},
	}

	// Ignored while the force is off.
	tw.CalibrateFrom(state)
	assert.Zero(t, tw.HorizontalPosition())

	tw.ApplyCommand(bus.Message{Fields: map[string]any{bus.FieldForces: true}})
	tw.CalibrateFrom(state)
	assert.Equal(t, 25.0, tw.HorizontalPosition())
	assert.Equal(t, 4.0, tw.VerticalPosition())
}
