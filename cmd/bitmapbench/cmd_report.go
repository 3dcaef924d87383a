package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/bitmapbench/internal/monitoring"
	"github.com/banshee-data/bitmapbench/internal/report"
	"github.com/banshee-data/bitmapbench/internal/storage/sqlite"
)

func runReport(cmd *cobra.Command, o *options, f *reportFlags, args []string) error {
	t, err := loadTable(o, f, args)
	if err != nil {
		return err
	}

	stats, err := report.Summarize(t, f.groupBy)
	if err != nil {
		return err
	}
	label := f.groupBy
	if label == "" {
		label = "group"
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tn\tmean\tstddev\tmin\tmax\n", label)
	for _, g := range stats {
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.6g\t%.6g\t%.6g\n", g.Key, g.N, g.Mean, g.StdDev, g.Min, g.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if f.png != "" {
		if err := report.WritePNG(t, f.x, f.groupBy, f.png); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", f.png)
	}
	if f.html != "" {
		file, err := os.Create(f.html)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", f.html, err)
		}
		defer file.Close()
		if err := report.WriteHTML(t, f.x, f.groupBy, file); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", f.html)
	}
	return nil
}

// loadTable reads either the CSV argument or a stored run.
func loadTable(o *options, f *reportFlags, args []string) (*report.Table, error) {
	if f.runID != "" {
		if o.dbPath == "" {
			return nil, errors.New("--run requires --db")
		}
		db, err := sqlite.Open(o.dbPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		run, err := db.Runs().Get(f.runID)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", f.runID, err)
		}
		results, err := db.Results().ListByRun(run.RunID)
		if err != nil {
			return nil, err
		}
		return report.FromResults(run.Columns, results)
	}

	if len(args) == 0 {
		return nil, errors.New("a results CSV or --run is required")
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return report.LoadCSV(file)
}

func listRuns(cmd *cobra.Command, o *options, limit int) error {
	if o.dbPath == "" {
		return errors.New("runs requires --db")
	}
	db, err := sqlite.Open(o.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Runs().List(limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "run_id\tmode\tstatus\tcompleted\tseed\tstarted")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%d\t%s\n",
			r.RunID, r.Mode, r.Status, r.Completed, r.Planned, r.Seed,
			time.Unix(0, r.StartedAt).UTC().Format(time.RFC3339))
	}
	return w.Flush()
}
