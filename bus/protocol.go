// Package bus carries hybrid test bench state samples over a RabbitMQ topic
// exchange. Payloads are JSON documents shaped like InfluxDB points
// (measurement, time, tags, fields) so the recorder can write them through
// unchanged.
package bus

import (
	"encoding/json"
	"fmt"
	"time"
)

// Routing keys of the hybrid test bench topic exchange.
const (
	RoutingKeyState                  = "hybridtestbench.record.driver.state"
	RoutingKeyUpdateCtrlParams       = "hybridtestbench.update.open_loop_controller.parameters"
	RoutingKeyUpdateClosedCtrlParams = "hybridtestbench.update.closed_loop_controller.parameters"
	RoutingKeyController             = "hybridtestbench.record.controller.state"
	RoutingKeyForces                 = "hybridtestbench.forces.on"
	RoutingKeyRecorder               = "hybridtestbench.record.#"
	RoutingKeyLoad                   = "hybridtestbench.load"
	RoutingKeyDisplacement           = "hybridtestbench.displacement"
)

// Measurement tags of the state publishers.
const (
	MeasurementEmulator   = "emulator"
	MeasurementDT         = "dt"
	MeasurementController = "controller"
)

// Field names of a bench state sample.
const (
	FieldForceOn                = "force_on"
	FieldHorizontalForce        = "horizontal_force"
	FieldVerticalForce          = "vertical_force"
	FieldHorizontalDisplacement = "horizontal_displacement"
	FieldVerticalDisplacement   = "vertical_displacement"
)

// Fields of a control command. Amplitude updates reuse the state field
// names: the horizontal axis is load-driven, the vertical one
// displacement-driven.
const (
	FieldForces           = "forces"
	FieldHorizontalPeriod = "horizontal_period"
	FieldVerticalPeriod   = "vertical_period"
)

// Message is one bus payload.
type Message struct {
	Measurement string            `json:"measurement"`
	Time        int64             `json:"time"`
	Tags        map[string]string `json:"tags,omitempty"`
	Fields      map[string]any    `json:"fields"`
}

// Timestamp returns the message time, which is in nanoseconds since the epoch.
func (m Message) Timestamp() time.Time {
	return time.Unix(0, m.Time)
}

// Float reads a numeric field. Absent or non-numeric fields read as zero:
// samples from foreign publishers carry fields we do not know about and
// vice versa, and a missing reading must not take the visualization down.
func (m Message) Float(name string) float64 {
	switch v := m.Fields[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	return 0
}

// Bool reads a boolean field. The emulator publishes force_on as a 0/1
// float, the controller as a JSON bool; both read correctly here.
func (m Message) Bool(name string) bool {
	switch v := m.Fields[name].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

// Encode serializes a message for publishing.
func Encode(m Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode bus message: %w", err)
	}
	return b, nil
}

// Decode parses a received payload.
func Decode(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("decode bus message: %w", err)
	}
	return m, nil
}
