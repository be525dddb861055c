package simulator

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/legged-robots/quinticwalk/trajectory"
)

// Plot draws the position of channels over time and saves it to path; the
// image format follows the extension (.png, .svg, .pdf...).
func Plot(samples []Sample, channels []trajectory.Channel, path string) error {
	if len(samples) == 0 {
		return errors.New("no samples to plot")
	}
	if len(channels) == 0 {
		return errors.New("no channels to plot")
	}

	p := plot.New()
	p.Title.Text = "walk trajectories"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "position"
	p.Add(plotter.NewGrid())

	for i, ch := range channels {
		if !ch.Valid() {
			return errors.Errorf("invalid channel %d", int(ch))
		}
		pts := make(plotter.XYs, len(samples))
		for j, s := range samples {
			pts[j].X = s.Time
			pts[j].Y = s.Pos[ch]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "cannot plot %s", ch)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / 7)
		p.Add(line)
		p.Legend.Add(ch.String(), line)
	}
	p.Legend.Top = true

	return errors.Wrapf(p.Save(10*vg.Inch, 5*vg.Inch, path), "cannot save plot to %q", path)
}
