package fatigue

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotFlows renders the peak history with every flow overlaid and writes
// the plot as PNG.
func (c *Counter) PlotFlows(w io.Writer) error {
	p := plot.New()
	p.Title.Text = "Horizontal Load Over Time"
	p.X.Label.Text = "Time Step"
	p.Y.Label.Text = "Horizontal Load [N]"

	peaks := make(plotter.XYs, len(c.peaks))
	for i, v := range c.peaks {
		peaks[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, err := plotter.NewLine(peaks)
	if err != nil {
		return fmt.Errorf("peak line: %w", err)
	}
	p.Add(line)
	p.Legend.Add("Peak", line)

	for _, f := range c.flows {
		xs, ys := c.flowCoordinates(f)
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
		}
		fl, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("flow line: %w", err)
		}
		fl.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(fl)
	}
	p.Add(plotter.NewGrid())

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render flow plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// PlotCycles renders the cycle histogram as a horizontal bar chart and
// writes it as PNG.
func (c *Counter) PlotCycles(w io.Writer) error {
	cycles := c.Cycles()

	p := plot.New()
	p.Title.Text = "Rainflow Cycles"
	p.X.Label.Text = "Number of Cycles"

	counts := make(plotter.Values, len(cycles))
	labels := make([]string, len(cycles))
	for i, cy := range cycles {
		counts[i] = cy.Count
		labels[i] = fmt.Sprintf("%g", cy.Range)
	}
	bars, err := plotter.NewBarChart(counts, vg.Points(12))
	if err != nil {
		return fmt.Errorf("cycle bars: %w", err)
	}
	bars.Horizontal = true
	p.Add(bars)
	p.NominalY(labels...)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render cycle plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// flowCoordinates traces a flow through the peak history, producing the
// polyline the flow follows when drawn over the peaks.
func (c *Counter) flowCoordinates(f *Flow) (xs, ys []float64) {
	data := c.peaks
	xs = []float64{float64(f.Start - 1)}
	ys = []float64{f.From}
	idx := 0
	for j := f.Start; j < f.End && j < len(data); j++ {
		switch {
		case f.Dir == -1 && data[j] < ys[idx]:
			ys = append(ys, ys[len(ys)-1])
			xs = append(xs, float64(j)-offset(data[j], data[j-1], ys[len(ys)-1]))
			ys = append(ys, math.Max(f.To, math.Min(ys[len(ys)-1], data[j])))
			xs = append(xs, float64(j)-offset(data[j], data[j-1], ys[len(ys)-1]))
		case f.Dir == +1 && data[j] > ys[idx]:
			ys = append(ys, ys[len(ys)-1])
			xs = append(xs, float64(j)-offset(data[j], data[j-1], ys[len(ys)-1]))
			ys = append(ys, math.Min(f.To, math.Max(ys[len(ys)-1], data[j])))
			xs = append(xs, float64(j)-offset(data[j], data[j-1], ys[len(ys)-1]))
		default:
			ys = append(ys, ys[len(ys)-1])
			xs = append(xs, float64(j))
		}
		idx++
	}
	return xs, ys
}

// offset interpolates how far before peak j the flow crosses level y.
func offset(cur, prev, y float64) float64 {
	return math.Abs((cur - y) / (cur - prev))
}
