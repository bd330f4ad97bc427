package fatigue_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/au-dtlab/benchviz/fatigue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeakDetection(t *testing.T) {
	c := fatigue.NewCounter(nil)

	samples := []float64{0, 1, 2, 1, -1, -2, -1}
	wantPeak := []bool{false, true, false, true, false, false, true}
	for i, s := range samples {
		assert.Equal(t, wantPeak[i], c.UpdateIfPeak(s), "sample %d", i)
	}
	// The implicit zero start is committed as the first peak.
	assert.Equal(t, []float64{0, 2, -2}, c.Peaks())
}

func TestCountAlternatingLoad(t *testing.T) {
	c := fatigue.NewCounter([]float64{1, -1, 1, -1})

	flows := c.Flows()
	require.Len(t, flows, 4)

	// First flow: opened at peak 1, falls and is extended to the end.
	assert.Equal(t, &fatigue.Flow{Start: 1, End: 4, From: 1, To: -1, Dir: -1}, flows[0])
	assert.Equal(t, &fatigue.Flow{Start: 2, End: 4, From: -1, To: 1, Dir: +1}, flows[1])
	assert.Equal(t, &fatigue.Flow{Start: 3, End: 4, From: 1, To: -1, Dir: -1}, flows[2])
	// The flow opened by the last peak has no direction yet.
	assert.Equal(t, 0, flows[3].Dir)

	cycles := c.Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, fatigue.Cycle{Range: 2, Count: 1.5}, cycles[0])
}

func TestCyclesBinsByRange(t *testing.T) {
	c := fatigue.NewCounter([]float64{0, 4, -4, 2, -2, 6})

	cycles := c.Cycles()
	require.NotEmpty(t, cycles)
	for i := 1; i < len(cycles); i++ {
		assert.Less(t, cycles[i-1].Range, cycles[i].Range, "sorted by range")
	}
	total := 0.0
	for _, cy := range cycles {
		total += cy.Count
	}
	// Every closed flow contributes exactly half a cycle.
	assert.InDelta(t, float64(len(c.Flows())-1)*0.5, total, 1e-9)
}

func TestRerunIsReproducible(t *testing.T) {
	c := fatigue.NewCounter([]float64{1, -1, 2, -2, 1})
	before := make([]fatigue.Flow, len(c.Flows()))
	for i, f := range c.Flows() {
		before[i] = *f
	}

	after := c.Rerun()
	require.Len(t, after, len(before))
	for i := range after {
		assert.Equal(t, before[i], *after[i], "flow %d", i)
	}
}

func TestPlots(t *testing.T) {
	c := fatigue.NewCounter([]float64{0, 4, -4, 2, -2, 6})

	var flowBuf bytes.Buffer
	require.NoError(t, c.PlotFlows(&flowBuf))
	_, err := png.Decode(&flowBuf)
	require.NoError(t, err)

	var cycleBuf bytes.Buffer
	require.NoError(t, c.PlotCycles(&cycleBuf))
	_, err = png.Decode(&cycleBuf)
	require.NoError(t, err)
}
