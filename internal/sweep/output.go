package sweep

import (
	"encoding/csv"
	"errors"
	"io"
)

// Sink receives the header once and then one row per trial. The first
// column of every row is the measured time in seconds.
type Sink interface {
	WriteHeader(header []string) error
	WriteRow(row []string) error
	Flush() error
}

// CSVSink writes rows as CSV, flushing after each row so a partial batch
// survives an interrupted run.
type CSVSink struct {
	w *csv.Writer
}

// NewCSVSink creates a CSVSink over w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (c *CSVSink) WriteHeader(header []string) error { return c.write(header) }
func (c *CSVSink) WriteRow(row []string) error       { return c.write(row) }

func (c *CSVSink) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVSink) write(rec []string) error {
	if err := c.w.Write(rec); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// MultiSink fans every call out to several sinks.
type MultiSink []Sink

func (m MultiSink) WriteHeader(header []string) error {
	for _, s := range m {
		if err := s.WriteHeader(header); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) WriteRow(row []string) error {
	for _, s := range m {
		if err := s.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Flush() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}
