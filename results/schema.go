package results

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current ledger schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS summaries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    policy TEXT NOT NULL,
    episodes INTEGER NOT NULL,
    avg_health_mean REAL NOT NULL,
    avg_health_std REAL NOT NULL,
    final_health_mean REAL NOT NULL,
    total_water_mean REAL NOT NULL,
    total_energy_mean REAL NOT NULL,
    violations_mean REAL NOT NULL,
    efficiency_mean REAL NOT NULL,
    reward_mean REAL NOT NULL,
    survival_rate REAL NOT NULL,
    UNIQUE (run_id, policy)
);

CREATE INDEX IF NOT EXISTS idx_summaries_run ON summaries(run_id);
CREATE INDEX IF NOT EXISTS idx_summaries_created ON summaries(created_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the ledger tables on a fresh database and checks the
// version of an existing one.
func InitSchema(ctx context.Context, db *sql.DB) error {
	version, err := getSchemaVersion(ctx, db)
	if err != nil {
		// Schema version table doesn't exist yet, create fresh schema
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}
	if version > SchemaVersion {
		return fmt.Errorf("ledger schema v%d is newer than supported v%d", version, SchemaVersion)
	}
	return nil
}

// getSchemaVersion returns the current schema version from the database.
// Returns 0 and an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// createSchema creates the initial database schema.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}
