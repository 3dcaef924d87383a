package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusError    = "error"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("sqlite: not found")

// Run is one batch of benchmark trials.
type Run struct {
	RunID       string          `json:"run_id"`
	Mode        string          `json:"mode"`
	Seed        uint64          `json:"seed"`
	Planned     int             `json:"planned"`
	Completed   int             `json:"completed"`
	Status      string          `json:"status"`
	ParamsJSON  json.RawMessage `json:"params_json,omitempty"`
	Columns     []string        `json:"columns,omitempty"`
	Version     string          `json:"version,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   int64           `json:"started_at"`
	CompletedAt int64           `json:"completed_at,omitempty"`
}

// RunStore provides persistence for benchmark runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Insert persists a new run. If RunID is empty, a UUID is generated.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt == 0 {
		run.StartedAt = time.Now().UnixNano()
	}
	if run.Status == "" {
		run.Status = RunStatusRunning
	}

	var params interface{}
	if len(run.ParamsJSON) > 0 {
		params = string(run.ParamsJSON)
	}
	columns, err := encodeColumns(run.Columns)
	if err != nil {
		return err
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO bench_runs (
				run_id, mode, seed, planned, completed, status,
				params_json, columns_json, version, error, started_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Mode, int64(run.Seed), run.Planned, run.Completed, run.Status,
			params, columns, run.Version, run.Error, run.StartedAt,
		)
		return err
	})
}

// SetColumns records the result column names for a run.
func (s *RunStore) SetColumns(runID string, columns []string) error {
	enc, err := encodeColumns(columns)
	if err != nil {
		return err
	}
	return s.update(runID, `UPDATE bench_runs SET columns_json = ? WHERE run_id = ?`, enc, runID)
}

// Complete marks a run finished with the given status.
func (s *RunStore) Complete(runID, status string, completed int, errMsg string) error {
	return s.update(runID, `
		UPDATE bench_runs
		SET status = ?, completed = ?, error = ?, completed_at = ?
		WHERE run_id = ?`,
		status, completed, errMsg, time.Now().UnixNano(), runID)
}

func (s *RunStore) update(runID, query string, args ...interface{}) error {
	return retryOnBusy(func() error {
		res, err := s.db.Exec(query, args...)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil
	})
}

const runColumns = `run_id, mode, seed, planned, completed, status,
	params_json, columns_json, version, error, started_at, completed_at`

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM bench_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return r, err
}

// List returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (s *RunStore) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM bench_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r           Run
		seed        int64
		params      sql.NullString
		columns     sql.NullString
		version     sql.NullString
		errMsg      sql.NullString
		completedAt sql.NullInt64
	)
	err := sc.Scan(
		&r.RunID, &r.Mode, &seed, &r.Planned, &r.Completed, &r.Status,
		&params, &columns, &version, &errMsg, &r.StartedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.Seed = uint64(seed)
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	if columns.Valid && columns.String != "" {
		if err := json.Unmarshal([]byte(columns.String), &r.Columns); err != nil {
			return nil, fmt.Errorf("decode columns of run %s: %w", r.RunID, err)
		}
	}
	r.Version = version.String
	r.Error = errMsg.String
	r.CompletedAt = completedAt.Int64
	return &r, nil
}

func encodeColumns(columns []string) (interface{}, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("encode columns: %w", err)
	}
	return string(b), nil
}
