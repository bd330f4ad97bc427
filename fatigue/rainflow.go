// Package fatigue implements rainflow cycle counting over a stream of load
// samples. Peaks are detected online from the incoming samples and each peak
// opens a half-cycle "flow" that later peaks extend or terminate; the
// aggregated flow ranges estimate the fatigue damage accumulated by the
// specimen.
package fatigue

import (
	"math"
	"sort"
)

// Flow is one half-cycle of the rainflow decomposition. Start and End are
// 1-based peak step indices, From and To the load values the flow spans.
// Dir is +1 for a rising flow, -1 for a falling one, 0 while undecided.
type Flow struct {
	Start int
	End   int
	From  float64
	To    float64
	Dir   int
}

// Range returns the load range spanned by the flow, rounded to the nearest
// integer as ranges are binned for cycle counting.
func (f *Flow) Range() float64 {
	return math.Round(math.Abs(f.To - f.From))
}

// Cycle is one bin of the cycle histogram: the number of full cycles
// observed at a given load range. Each closed half-cycle contributes 0.5.
type Cycle struct {
	Range float64
	Count float64
}

// Counter runs the rainflow algorithm incrementally. Feed raw samples
// through UpdateIfPeak; Cycles aggregates the closed flows on demand.
type Counter struct {
	step   int
	peaks  []float64
	flows  []*Flow
	active []*Flow
	last   [2]float64 // most recent two raw samples, newest first
}

// NewCounter returns a counter primed with an already detected peak
// history. Pass nil to start from an empty stream.
func NewCounter(peaks []float64) *Counter {
	c := &Counter{peaks: append([]float64(nil), peaks...)}
	for _, p := range c.peaks {
		c.counterStep(p)
	}
	return c
}

// Peaks returns the detected peak history.
func (c *Counter) Peaks() []float64 { return c.peaks }

// Flows returns all flows opened so far, closed and active alike.
func (c *Counter) Flows() []*Flow { return c.flows }

// ActiveFlows returns the flows still open against future peaks.
func (c *Counter) ActiveFlows() []*Flow { return c.active }

// UpdateIfPeak feeds one raw sample. The previous sample is committed as a
// peak when the new sample reverses the local trend; the method reports
// whether a peak was committed.
func (c *Counter) UpdateIfPeak(sample float64) bool {
	isPeak := true
	switch {
	case c.last[0] <= c.last[1] && c.last[0] < sample:
		c.commitPeak(c.last[0])
	case c.last[0] >= c.last[1] && c.last[0] > sample:
		c.commitPeak(c.last[0])
	default:
		isPeak = false
	}
	c.last = [2]float64{sample, c.last[0]}
	return isPeak
}

func (c *Counter) commitPeak(v float64) {
	v = math.Round(v)
	c.peaks = append(c.peaks, v)
	c.counterStep(v)
}

// counterStep processes one committed peak against the active flows.
func (c *Counter) counterStep(peak float64) {
	c.step++
	currentMax := peak
	terminated := []int(nil)
	first := true

	snapshot := append([]*Flow(nil), c.active...)
	for idx, f := range snapshot {
		f.End = c.step

		if f.Start == c.step-1 {
			// The flow opened by the previous peak gets its direction and
			// first endpoint now.
			f.To = currentMax
			if !first {
				terminated = append(terminated, idx)
			}
			if peak > f.From {
				f.Dir = +1
			} else {
				f.Dir = -1
			}
			c.flows[f.Start-1] = f
			first = false
			continue
		}

		switch f.Dir {
		case -1:
			switch {
			case peak > f.From:
				terminated = append(terminated, idx)
			case peak <= f.To:
				// Peak extends the falling flow past its previous endpoint.
				prev := f.To
				f.To = currentMax
				if !first {
					terminated = append(terminated, idx)
				}
				currentMax = prev
				c.flows[f.Start-1] = f
				first = false
			}
		case +1:
			switch {
			case peak < f.From:
				terminated = append(terminated, idx)
			case peak >= f.To:
				prev := f.To
				f.To = currentMax
				if !first {
					terminated = append(terminated, idx)
				}
				currentMax = prev
				c.flows[f.Start-1] = f
				first = false
			}
		}
	}

	c.active = append(c.active, &Flow{Start: c.step, End: c.step, From: peak, To: peak})
	c.flows = append(c.flows, &Flow{Start: c.step, End: c.step, From: peak, To: peak})

	for i := len(terminated) - 1; i >= 0; i-- {
		c.active = append(c.active[:terminated[i]], c.active[terminated[i]+1:]...)
	}
}

// Rerun recomputes all flows from the stored peak history.
func (c *Counter) Rerun() []*Flow {
	c.step = 0
	c.flows = nil
	c.active = nil
	for _, p := range c.peaks {
		c.counterStep(p)
	}
	return c.flows
}

// Cycles bins the flows by load range and counts half a cycle per flow.
// The still-open last flow is excluded. Bins come back sorted by range.
func (c *Counter) Cycles() []Cycle {
	counts := make(map[float64]float64)
	if len(c.flows) > 0 {
		for _, f := range c.flows[:len(c.flows)-1] {
			if r := f.Range(); r > 0 {
				counts[r] += 0.5
			}
		}
	}
	cycles := make([]Cycle, 0, len(counts))
	for r, n := range counts {
		cycles = append(cycles, Cycle{Range: r, Count: n})
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Range < cycles[j].Range })
	return cycles
}
