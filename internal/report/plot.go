package report

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Series is the time-versus-x points of one group.
type Series struct {
	Name   string
	Points plotter.XYs
}

// Points returns time against column x, split by groupBy. An empty groupBy
// yields a single series named "all".
func Points(t *Table, x, groupBy string) ([]Series, error) {
	xs, err := t.Floats(x)
	if err != nil {
		return nil, err
	}
	ys, err := t.Floats(TimeColumn)
	if err != nil {
		return nil, err
	}
	gidx := -1
	if groupBy != "" {
		if gidx, err = t.Column(groupBy); err != nil {
			return nil, err
		}
	}

	byName := map[string]plotter.XYs{}
	for i, row := range t.Rows {
		name := "all"
		if gidx >= 0 {
			name = row[gidx]
		}
		byName[name] = append(byName[name], plotter.XY{X: xs[i], Y: ys[i]})
	}
	out := make([]Series, 0, len(byName))
	for name, pts := range byName {
		out = append(out, Series{Name: name, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// WritePNG saves a scatter plot of time against x to path.
func WritePNG(t *Table, x, groupBy, path string) error {
	series, err := Points(t, x, groupBy)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", TimeColumn, x)
	p.X.Label.Text = x
	p.Y.Label.Text = "Time (s)"

	for i, s := range series {
		sc, err := plotter.NewScatter(s.Points)
		if err != nil {
			return fmt.Errorf("scatter %s: %w", s.Name, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		if groupBy != "" {
			p.Legend.Add(groupBy+"="+s.Name, sc)
		}
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}
