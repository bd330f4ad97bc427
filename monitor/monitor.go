// Package monitor evaluates bounded-recovery requirements over sampled bench
// signals. A requirement states that whenever a signal crosses a limit it
// must return to the safe side within a recovery window:
//
//	always((v crosses limit) implies (eventually[0:window](v recovers)))
//
// Evaluate returns the quantitative robustness of that formula: positive
// when the requirement holds with margin, negative when it is violated, with
// magnitude measuring how close the signal is to either.
package monitor

import (
	"errors"
	"math"
	"sort"
)

// Sample is one point of a sampled signal. Time is in seconds.
type Sample struct {
	Time  float64
	Value float64
}

// Signal is a time-ordered series of samples.
type Signal []Sample

// ErrEmptySignal is returned when a requirement is evaluated on no samples.
var ErrEmptySignal = errors.New("monitor: empty signal")

// Bound selects which side of the limit counts as an excursion.
type Bound int

const (
	// UpperBound flags excursions at or above the limit; recovery is
	// returning below it. Used for displacement and force ceilings.
	UpperBound Bound = iota
	// LowerBound flags excursions at or below the limit; recovery is
	// returning above it. Used for stiffness floors such as the E-modulus.
	LowerBound
)

// Spec is a bounded-recovery requirement on a single signal.
type Spec struct {
	Limit  float64
	Window float64 // recovery window [s]
	Bound  Bound
}

// excursion is the margin by which v violates the limit side.
func (sp Spec) excursion(v float64) float64 {
	if sp.Bound == UpperBound {
		return v - sp.Limit
	}
	return sp.Limit - v
}

// recovery is the margin by which v sits on the safe side.
func (sp Spec) recovery(v float64) float64 {
	return -sp.excursion(v)
}

// Evaluate computes the robustness series of the requirement over the
// signal. The value at index i is the robustness of the requirement holding
// from sample i onward.
func (sp Spec) Evaluate(sig Signal) (Signal, error) {
	if len(sig) == 0 {
		return nil, ErrEmptySignal
	}

	// Robustness of "(excursion) implies (eventually[0:W] recovery)" at
	// each sample: max(-excursion, best recovery inside the window).
	inner := make([]float64, len(sig))
	for i, s := range sig {
		best := math.Inf(-1)
		for j := i; j < len(sig) && sig[j].Time <= s.Time+sp.Window; j++ {
			if r := sp.recovery(sig[j].Value); r > best {
				best = r
			}
		}
		inner[i] = math.Max(-sp.excursion(s.Value), best)
	}

	// The unbounded always is a running minimum from the end.
	out := make(Signal, len(sig))
	min := math.Inf(1)
	for i := len(sig) - 1; i >= 0; i-- {
		if inner[i] < min {
			min = inner[i]
		}
		out[i] = Sample{Time: sig[i].Time, Value: min}
	}
	return out, nil
}

// Robustness evaluates the requirement and returns its value at the start
// of the signal, the conventional single-number verdict.
func (sp Spec) Robustness(sig Signal) (float64, error) {
	series, err := sp.Evaluate(sig)
	if err != nil {
		return 0, err
	}
	return series[0].Value, nil
}

// Align restricts two signals to their common timestamps, returning series
// of equal length. Sampled sources deliver at slightly different cadences,
// requirements over two signals need them on a shared time base.
func Align(a, b Signal) (Signal, Signal) {
	times := make(map[float64]float64, len(b))
	for _, s := range b {
		times[s.Time] = s.Value
	}
	var outA, outB Signal
	for _, s := range a {
		if v, ok := times[s.Time]; ok {
			outA = append(outA, s)
			outB = append(outB, Sample{Time: s.Time, Value: v})
		}
	}
	return outA, outB
}

// Sorted returns the signal ordered by time. The input is not modified.
func Sorted(sig Signal) Signal {
	out := append(Signal(nil), sig...)
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
