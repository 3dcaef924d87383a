package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/bitmapbench/internal/monitoring"
	"github.com/banshee-data/bitmapbench/internal/storage/sqlite"
	"github.com/banshee-data/bitmapbench/internal/version"
)

func init() {
	monitoring.SetLogger(nil)
}

func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestVersionCommand(t *testing.T) {
	out, err := execCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.String())
}

func TestSampleDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, err := execCmd(t, "sample", "--dry-run", "--seed", "42", "-n", "5",
		"--size1", "1000:2000", "--density1", "0.01,0.1", path)
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"time", "size1", "density1", "universe1", "size2", "density2", "universe2"}, records[0])
	for _, row := range records[1:] {
		assert.Equal(t, "0", row[0])
		// size2 and density2 copy the first bitmap.
		assert.Equal(t, row[1], row[4])
		assert.Equal(t, row[2], row[5])
	}
}

func TestSampleSeedIsReproducible(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	args := []string{"sample", "--dry-run", "--seed", "7", "-n", "20", "--size1", "1:100000", "--density1", "0.001:1"}
	_, err := execCmd(t, append(args, a)...)
	require.NoError(t, err)
	_, err = execCmd(t, append(args, b)...)
	require.NoError(t, err)
	assert.Equal(t, readCSV(t, a), readCSV(t, b))
}

func TestSampleToStdout(t *testing.T) {
	out, err := execCmd(t, "sample", "--dry-run", "--seed", "1", "-n", "2", "--size1", "10", "--density1", "0.5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0,10,0.5,20,10,0.5,20", lines[1])
}

func TestSampleErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing size1", []string{"sample", "--dry-run", "--density1", "0.5"}},
		{"mixed separators", []string{"sample", "--dry-run", "--size1", "1,2:3", "--density1", "0.5"}},
		{"density above one", []string{"sample", "--dry-run", "--size1", "10", "--density1", "2"}},
		{"universe overflow", []string{"sample", "--dry-run", "--size1", "1000", "--density1", "0.0000001:1"}},
		{"zero runs", []string{"sample", "--dry-run", "-n", "0", "--size1", "10", "--density1", "0.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execCmd(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestFactorialDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, err := execCmd(t, "factorial", "--dry-run", "--seed", "3",
		"--factor", "large1", "--factor", "dense1", "--factor", "avx", path)
	require.NoError(t, err)

	records := readCSV(t, path)
	// large1 keeps its default pin, so one full cover is four trials.
	require.Len(t, records, 5)
	header := records[0]
	require.Equal(t, "time", header[0])

	seen := map[string]bool{}
	for _, row := range records[1:] {
		assert.Equal(t, "true", row[1], "large1 is pinned true")
		seen[strings.Join(row[1:10], ",")] = true
	}
	assert.Len(t, seen, 4)
}

func TestFactorialPins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, err := execCmd(t, "factorial", "--dry-run", "--seed", "3", "-n", "6",
		"--factor", "dense1", "--factor", "cow", "--pin", "cow=false", path)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, path), 7)

	_, err = execCmd(t, "factorial", "--dry-run", "--factor", "dense1", "--pin", "avx=true")
	assert.Error(t, err, "pin outside the factor list")

	_, err = execCmd(t, "factorial", "--dry-run", "--factor", "turbo")
	assert.Error(t, err)
}

func TestStoredRunReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bench.db")
	csvPath := filepath.Join(dir, "out.csv")

	_, err := execCmd(t, "sample", "--dry-run", "--seed", "9", "-n", "4", "--db", dbPath,
		"--size1", "100,200", "--density1", "0.5", csvPath)
	require.NoError(t, err)

	db, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	runs, err := db.Runs().List(10)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, sqlite.RunStatusComplete, run.Status)
	assert.Equal(t, 4, run.Completed)
	assert.Equal(t, uint64(9), run.Seed)
	assert.Equal(t, version.String(), run.Version)

	out, err := execCmd(t, "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, run.RunID)
	assert.Contains(t, out, "4/4")

	out, err = execCmd(t, "report", "--db", dbPath, "--run", run.RunID, "--group-by", "size1")
	require.NoError(t, err)
	assert.Contains(t, out, "size1")
	assert.Contains(t, out, "mean")

	_, err = execCmd(t, "report", "--run", run.RunID)
	assert.Error(t, err, "--run without --db")
}

func TestReportCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "results.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("time,size1,copy-on-write\n1,10,true\n3,20,true\n2,10,false\n"), 0644))
	png := filepath.Join(dir, "plot.png")
	html := filepath.Join(dir, "plot.html")

	out, err := execCmd(t, "report", "--x", "size1", "--group-by", "copy-on-write", "--png", png, "--html", html, csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "true")
	assert.Contains(t, out, "false")
	assert.FileExists(t, png)
	assert.FileExists(t, html)

	_, err = execCmd(t, "report")
	assert.Error(t, err)
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")
	plan := filepath.Join(dir, "plan.yaml")
	body := "mode: factorial\nruns: 3\nseed: 11\ndry_run: true\noutput: " + out + "\nfactorial:\n  factors: [dense1, dense2]\n"
	require.NoError(t, os.WriteFile(plan, []byte(body), 0644))

	_, err := execCmd(t, "plan", plan)
	require.NoError(t, err)
	records := readCSV(t, out)
	assert.Len(t, records, 4)
	assert.Equal(t, "time", records[0][0])

	_, err = execCmd(t, "plan", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRunsRequiresDB(t *testing.T) {
	_, err := execCmd(t, "runs")
	assert.Error(t, err)
}
