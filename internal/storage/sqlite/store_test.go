package sqlite

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "bench.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Migrates(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, db.MigrateUp())
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.db")
	db, err := Open(path)
	require.NoError(t, err)
	run := &Run{Mode: "sample", Seed: 1, Planned: 3}
	require.NoError(t, db.Runs().Insert(run))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Runs().Get(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "sample", got.Mode)
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.MigrateDown())
	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestRunStore_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	runs := db.Runs()

	run := &Run{
		Mode:       "factorial",
		Seed:       1<<63 + 5,
		Planned:    64,
		ParamsJSON: json.RawMessage(`{"pinned":"large1=true"}`),
		Version:    "dev (unknown, built unknown)",
	}
	require.NoError(t, runs.Insert(run))
	require.NotEmpty(t, run.RunID)
	assert.Equal(t, RunStatusRunning, run.Status)

	cols := []string{"time", "dense1", "size1"}
	require.NoError(t, runs.SetColumns(run.RunID, cols))
	require.NoError(t, runs.Complete(run.RunID, RunStatusComplete, 64, ""))

	got, err := runs.Get(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.Seed, got.Seed)
	assert.Equal(t, RunStatusComplete, got.Status)
	assert.Equal(t, 64, got.Completed)
	assert.NotZero(t, got.CompletedAt)
	assert.JSONEq(t, `{"pinned":"large1=true"}`, string(got.ParamsJSON))
	if diff := cmp.Diff(cols, got.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStore_NotFound(t *testing.T) {
	runs := openTestDB(t).Runs()

	_, err := runs.Get("missing")
	assert.True(t, errors.Is(err, ErrNotFound), "Get error = %v", err)

	err = runs.Complete("missing", RunStatusError, 0, "boom")
	assert.True(t, errors.Is(err, ErrNotFound), "Complete error = %v", err)
}

func TestRunStore_List(t *testing.T) {
	runs := openTestDB(t).Runs()
	for i := 1; i <= 3; i++ {
		require.NoError(t, runs.Insert(&Run{Mode: "sample", Seed: uint64(i), Planned: i, StartedAt: int64(i)}))
	}

	all, err := runs.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(3), all[0].Seed, "newest first")

	two, err := runs.List(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestResultStore_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	run := &Run{Mode: "sample", Planned: 2}
	require.NoError(t, db.Runs().Insert(run))

	results := db.Results()
	for seq, elapsed := range []float64{0.5, 0.25} {
		require.NoError(t, results.Insert(&Result{
			RunID:          run.RunID,
			Seq:            seq,
			ElapsedSeconds: elapsed,
			Fields:         map[string]string{"size1": "100", "density1": "0.5"},
		}))
	}

	got, err := results.ListByRun(run.RunID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Seq)
	assert.Equal(t, 0.25, got[1].ElapsedSeconds)
	assert.Equal(t, "100", got[0].Fields["size1"])

	n, err := results.CountByRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestResultStore_DuplicateSeqRejected(t *testing.T) {
	db := openTestDB(t)
	run := &Run{Mode: "sample"}
	require.NoError(t, db.Runs().Insert(run))

	res := db.Results()
	require.NoError(t, res.Insert(&Result{RunID: run.RunID, Seq: 0, Fields: map[string]string{}}))
	assert.Error(t, res.Insert(&Result{RunID: run.RunID, Seq: 0, Fields: map[string]string{}}))
}
