package sweep

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/banshee-data/bitmapbench/internal/storage/sqlite"
)

// StoreSink persists each row as a result of one stored run.
type StoreSink struct {
	runs    *sqlite.RunStore
	results *sqlite.ResultStore
	runID   string
	header  []string
	seq     int
}

// NewStoreSink records rows against runID.
func NewStoreSink(db *sqlite.DB, runID string) *StoreSink {
	return &StoreSink{runs: db.Runs(), results: db.Results(), runID: runID}
}

// Written returns the number of rows persisted.
func (s *StoreSink) Written() int { return s.seq }

func (s *StoreSink) WriteHeader(header []string) error {
	s.header = append([]string(nil), header...)
	return s.runs.SetColumns(s.runID, s.header)
}

func (s *StoreSink) WriteRow(row []string) error {
	if s.header == nil {
		return errors.New("sweep: row written before header")
	}
	if len(row) != len(s.header) {
		return fmt.Errorf("sweep: row has %d fields, header has %d", len(row), len(s.header))
	}
	elapsed, err := strconv.ParseFloat(row[0], 64)
	if err != nil {
		return fmt.Errorf("sweep: elapsed %q: %w", row[0], err)
	}
	fields := make(map[string]string, len(row)-1)
	for i := 1; i < len(row); i++ {
		fields[s.header[i]] = row[i]
	}
	res := &sqlite.Result{
		RunID:          s.runID,
		Seq:            s.seq,
		ElapsedSeconds: elapsed,
		Fields:         fields,
	}
	if err := s.results.Insert(res); err != nil {
		return fmt.Errorf("store result %d: %w", s.seq, err)
	}
	s.seq++
	return nil
}

func (s *StoreSink) Flush() error { return nil }
