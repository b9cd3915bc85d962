// Package results keeps a SQLite ledger of evaluation summaries so policy
// comparisons can be tracked across runs.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pthm-cable/plantcare/eval"
)

// timeLayout keeps created_at lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one stored policy summary.
type Record struct {
	ID        int64
	CreatedAt time.Time
	Summary   eval.Summary
}

// Store is a ledger of evaluation summaries.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores summary under runID. Saving the same policy twice for one run
// replaces the earlier row.
func (s *Store) Save(ctx context.Context, runID string, summary eval.Summary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (
			run_id, created_at, policy, episodes,
			avg_health_mean, avg_health_std, final_health_mean,
			total_water_mean, total_energy_mean, violations_mean,
			efficiency_mean, reward_mean, survival_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, policy) DO UPDATE SET
			created_at = excluded.created_at,
			episodes = excluded.episodes,
			avg_health_mean = excluded.avg_health_mean,
			avg_health_std = excluded.avg_health_std,
			final_health_mean = excluded.final_health_mean,
			total_water_mean = excluded.total_water_mean,
			total_energy_mean = excluded.total_energy_mean,
			violations_mean = excluded.violations_mean,
			efficiency_mean = excluded.efficiency_mean,
			reward_mean = excluded.reward_mean,
			survival_rate = excluded.survival_rate`,
		runID, s.now().UTC().Format(timeLayout), summary.Policy, summary.Episodes,
		summary.AvgHealthMean, summary.AvgHealthStd, summary.FinalHealthMean,
		summary.WaterMean, summary.EnergyMean, summary.ViolationsMean,
		summary.EfficiencyMean, summary.RewardMean, summary.SurvivalRate,
	)
	if err != nil {
		return fmt.Errorf("failed to save summary for %s/%s: %w", runID, summary.Policy, err)
	}
	return nil
}

const selectColumns = `
	id, run_id, created_at, policy, episodes,
	avg_health_mean, avg_health_std, final_health_mean,
	total_water_mean, total_energy_mean, violations_mean,
	efficiency_mean, reward_mean, survival_rate`

// List returns the most recent records, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM summaries ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return scanRecords(rows)
}

// Run returns the records of one run in insertion order.
func (s *Store) Run(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM summaries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var created string
		sm := &r.Summary
		if err := rows.Scan(
			&r.ID, &sm.RunID, &created, &sm.Policy, &sm.Episodes,
			&sm.AvgHealthMean, &sm.AvgHealthStd, &sm.FinalHealthMean,
			&sm.WaterMean, &sm.EnergyMean, &sm.ViolationsMean,
			&sm.EfficiencyMean, &sm.RewardMean, &sm.SurvivalRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		t, err := time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", created, err)
		}
		r.CreatedAt = t
		out = append(out, r)
	}
	return out, rows.Err()
}
