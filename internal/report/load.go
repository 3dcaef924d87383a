// Package report summarises and plots measured benchmark results.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/bitmapbench/internal/storage/sqlite"
)

// TimeColumn holds the measured seconds of each row.
const TimeColumn = "time"

var ErrNoColumn = errors.New("report: no such column")

// Table is a header plus string rows, as written by the sweep CSV sink.
type Table struct {
	Header []string
	Rows   [][]string
}

// LoadCSV reads a result table. The first record is the header.
func LoadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("report: empty csv")
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// FromResults rebuilds a table from stored results. columns is the run's
// recorded header, starting with the time column.
func FromResults(columns []string, results []*sqlite.Result) (*Table, error) {
	if len(columns) == 0 || columns[0] != TimeColumn {
		return nil, fmt.Errorf("report: stored columns %v do not start with %q", columns, TimeColumn)
	}
	t := &Table{Header: append([]string(nil), columns...)}
	for _, res := range results {
		row := make([]string, len(columns))
		row[0] = strconv.FormatFloat(res.ElapsedSeconds, 'f', -1, 64)
		for i, c := range columns[1:] {
			row[i+1] = res.Fields[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Column returns the index of name in the header.
func (t *Table) Column(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrNoColumn, name)
}

// Floats parses every value of a column.
func (t *Table) Floats(name string) ([]float64, error) {
	idx, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", i+1, name, err)
		}
		out[i] = v
	}
	return out, nil
}
