package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/micromata/projectforge-sub017/internal/db"
	"github.com/micromata/projectforge-sub017/internal/domain"
)

const chartColumns = `id, short_id, title, root_task_id, gantt_objects, created_at, updated_at`

// SQLiteChartRepo implements ChartRepo.
type SQLiteChartRepo struct {
	db db.DBTX
}

func NewSQLiteChartRepo(conn db.DBTX) *SQLiteChartRepo {
	return &SQLiteChartRepo{db: conn}
}

func (r *SQLiteChartRepo) Create(ctx context.Context, c *domain.GanttChart) error {
	query := `INSERT INTO gantt_charts (` + chartColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.ShortID,
		c.Title,
		c.RootTaskID,
		c.GanttObjects,
		formatTimestamp(c.CreatedAt),
		formatTimestamp(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting gantt chart: %w", err)
	}
	return nil
}

func (r *SQLiteChartRepo) GetByID(ctx context.Context, id string) (*domain.GanttChart, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chartColumns+` FROM gantt_charts WHERE id = ?`, id)
	return r.scanOne(row, id)
}

// GetByShortID matches case-insensitively.
func (r *SQLiteChartRepo) GetByShortID(ctx context.Context, shortID string) (*domain.GanttChart, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chartColumns+` FROM gantt_charts WHERE short_id != '' AND LOWER(short_id) = LOWER(?)`, shortID)
	return r.scanOne(row, shortID)
}

func (r *SQLiteChartRepo) List(ctx context.Context) ([]*domain.GanttChart, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+chartColumns+` FROM gantt_charts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing gantt charts: %w", err)
	}
	defer rows.Close()

	var charts []*domain.GanttChart
	for rows.Next() {
		c, err := scanChart(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gantt chart row: %w", err)
		}
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

// Update stores title, root task and XML blob. The last writer wins.
func (r *SQLiteChartRepo) Update(ctx context.Context, c *domain.GanttChart) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gantt_charts SET title = ?, root_task_id = ?, gantt_objects = ?, updated_at = ? WHERE id = ?`,
		c.Title, c.RootTaskID, c.GanttObjects, formatTimestamp(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("updating gantt chart: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("gantt chart %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteChartRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gantt_charts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting gantt chart: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("gantt chart %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteChartRepo) scanOne(row *sql.Row, key string) (*domain.GanttChart, error) {
	c, err := scanChart(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("gantt chart %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning gantt chart: %w", err)
	}
	return c, nil
}

func scanChart(s rowScanner) (*domain.GanttChart, error) {
	var c domain.GanttChart
	var createdAt, updatedAt string
	if err := s.Scan(&c.ID, &c.ShortID, &c.Title, &c.RootTaskID, &c.GanttObjects, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)
	return &c, nil
}
