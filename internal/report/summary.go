package report

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GroupStat describes the measured times of the rows sharing one value of
// the grouping column.
type GroupStat struct {
	Key    string
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize groups rows by groupBy and computes time statistics per group,
// sorted by key. An empty groupBy treats the whole table as one group keyed
// "all". Standard deviation is the sample estimate and zero for single rows.
func Summarize(t *Table, groupBy string) ([]GroupStat, error) {
	times, err := t.Floats(TimeColumn)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(t.Rows))
	if groupBy == "" {
		for i := range keys {
			keys[i] = "all"
		}
	} else {
		idx, err := t.Column(groupBy)
		if err != nil {
			return nil, err
		}
		for i, row := range t.Rows {
			keys[i] = row[idx]
		}
	}

	groups := map[string][]float64{}
	for i, k := range keys {
		groups[k] = append(groups[k], times[i])
	}

	out := make([]GroupStat, 0, len(groups))
	for k, xs := range groups {
		g := GroupStat{Key: k, N: len(xs), Min: floats.Min(xs), Max: floats.Max(xs)}
		if len(xs) < 2 {
			g.Mean = xs[0]
		} else {
			g.Mean, g.StdDev = stat.MeanStdDev(xs, nil)
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
