package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders an interactive scatter of time against x to w.
func WriteHTML(t *Table, x, groupBy string, w io.Writer) error {
	series, err := Points(t, x, groupBy)
	if err != nil {
		return err
	}

	n := 0
	for _, s := range series {
		n += len(s.Points)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Benchmark results", Width: "1000px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s vs %s", TimeColumn, x), Subtitle: fmt.Sprintf("rows=%d", n)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(groupBy != "")}),
		charts.WithXAxisOpts(opts.XAxis{Name: x, NameLocation: "middle", NameGap: 25, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 40, Type: "value"}),
	)
	for _, s := range series {
		data := make([]opts.ScatterData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
		}
		name := s.Name
		if groupBy != "" {
			name = groupBy + "=" + s.Name
		}
		scatter.AddSeries(name, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
