package recorder_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/au-dtlab/benchviz/bus"
	"github.com/au-dtlab/benchviz/recorder"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) *recorder.Recorder {
	t.Helper()
	r := recorder.New(recorder.Config{Org: "bench", Bucket: "bench"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(r.Close)
	return r
}

func TestRecordSkipsEmptyMessages(t *testing.T) {
	r := newTestRecorder(t)
	// A record request without fields carries nothing to store and must not
	// turn into a write.
	err := r.Record(context.Background(), bus.Message{Measurement: bus.MeasurementEmulator})
	require.NoError(t, err)
}

func TestWriteRobustnessEmptySeries(t *testing.T) {
	r := newTestRecorder(t)
	require.NoError(t, r.WriteRobustness(context.Background(), "stl_monitor", nil))
}
