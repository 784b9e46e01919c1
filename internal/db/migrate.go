package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/micromata/projectforge-sub017/internal/idgen"
)

// Migrate applies all schema statements. Statements are idempotent, so the
// full list is re-run on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillChartShortIDs(db); err != nil {
		return fmt.Errorf("backfilling chart short ids: %w", err)
	}
	return nil
}

var migrations = []string{
	// Snapshot of the task hierarchy. Parent and predecessor references are
	// deferred so an import can insert tasks in any order within one tx.
	`CREATE TABLE IF NOT EXISTS tasks (
		id                 INTEGER PRIMARY KEY CHECK(id > 0),
		parent_id          INTEGER REFERENCES tasks(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
		title              TEXT NOT NULL,
		order_index        INTEGER NOT NULL DEFAULT 0,
		duration           REAL,
		start_date         TEXT,
		end_date           TEXT,
		predecessor_id     INTEGER REFERENCES tasks(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		predecessor_offset INTEGER NOT NULL DEFAULT 0,
		relation_type      TEXT NOT NULL DEFAULT 'FINISH_START'
		                   CHECK(relation_type IN ('FINISH_START','FINISH_FINISH','START_START','START_FINISH')),
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_predecessor ON tasks(predecessor_id)`,

	`CREATE TABLE IF NOT EXISTS gantt_charts (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		root_task_id  INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		gantt_objects TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_gantt_charts_root ON gantt_charts(root_task_id)`,

	`CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	)`,

	// Short ids were added after the first chart schema.
	`ALTER TABLE gantt_charts ADD COLUMN short_id TEXT NOT NULL DEFAULT ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_gantt_charts_short_id ON gantt_charts(short_id) WHERE short_id != ''`,
}

// migrateBackfillChartShortIDs assigns short ids to charts created before
// the short_id column existed.
func migrateBackfillChartShortIDs(db *sql.DB) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT id FROM gantt_charts WHERE short_id = '' ORDER BY created_at`)
	if err != nil {
		return fmt.Errorf("listing charts without short id: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		shortID, err := idgen.ChartShortID()
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			`UPDATE gantt_charts SET short_id = ? WHERE id = ? AND short_id = ''`, shortID, id); err != nil {
			return fmt.Errorf("updating chart %s: %w", id, err)
		}
	}
	return nil
}
