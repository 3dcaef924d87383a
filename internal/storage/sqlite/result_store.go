package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result is one measured trial. Fields maps each assignment column to its
// rendered value.
type Result struct {
	ResultID       string            `json:"result_id"`
	RunID          string            `json:"run_id"`
	Seq            int               `json:"seq"`
	ElapsedSeconds float64           `json:"elapsed_seconds"`
	Fields         map[string]string `json:"fields"`
	CreatedAt      int64             `json:"created_at"`
}

// ResultStore provides persistence for trial results.
type ResultStore struct {
	db *sql.DB
}

// NewResultStore creates a new ResultStore.
func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Insert persists a result. If ResultID is empty, a UUID is generated.
func (s *ResultStore) Insert(res *Result) error {
	if res.ResultID == "" {
		res.ResultID = uuid.New().String()
	}
	if res.CreatedAt == 0 {
		res.CreatedAt = time.Now().UnixNano()
	}
	fields, err := json.Marshal(res.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO bench_results (
				result_id, run_id, seq, elapsed_seconds, fields_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?)`,
			res.ResultID, res.RunID, res.Seq, res.ElapsedSeconds, string(fields), res.CreatedAt,
		)
		return err
	})
}

// ListByRun returns the results of a run in trial order.
func (s *ResultStore) ListByRun(runID string) ([]*Result, error) {
	rows, err := s.db.Query(`
		SELECT result_id, run_id, seq, elapsed_seconds, fields_json, created_at
		FROM bench_results
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*Result
	for rows.Next() {
		var r Result
		var fields string
		if err := rows.Scan(&r.ResultID, &r.RunID, &r.Seq, &r.ElapsedSeconds, &fields, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
			return nil, fmt.Errorf("decode fields of result %s: %w", r.ResultID, err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// CountByRun returns how many results a run has.
func (s *ResultStore) CountByRun(runID string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM bench_results WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}
