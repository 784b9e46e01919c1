package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/micromata/projectforge-sub017/internal/db"
	"github.com/micromata/projectforge-sub017/internal/domain"
)

const taskColumns = `id, parent_id, title, order_index, duration, start_date, end_date,
		predecessor_id, predecessor_offset, relation_type, created_at, updated_at`

// SQLiteTaskRepo implements TaskRepo.
type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, r.values(t)...); err != nil {
		return fmt.Errorf("inserting task %d: %w", t.ID, err)
	}
	return nil
}

// Upsert inserts t or replaces the stored fields of the task with the same
// id, keeping its original created_at.
func (r *SQLiteTaskRepo) Upsert(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_id = excluded.parent_id,
			title = excluded.title,
			order_index = excluded.order_index,
			duration = excluded.duration,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			predecessor_id = excluded.predecessor_id,
			predecessor_offset = excluded.predecessor_offset,
			relation_type = excluded.relation_type,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, r.values(t)...); err != nil {
		return fmt.Errorf("upserting task %d: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteTaskRepo) values(t *domain.Task) []any {
	return []any{
		t.ID,
		nullableInt64ToValue(t.ParentID),
		t.Title,
		t.OrderIndex,
		nullableFloatToValue(t.Duration),
		nullableDateToValue(t.StartDate),
		nullableDateToValue(t.EndDate),
		nullableInt64ToValue(t.PredecessorID),
		t.PredecessorOffset,
		string(t.RelationType.OrDefault()),
		formatTimestamp(t.CreatedAt),
		formatTimestamp(t.UpdatedAt),
	}
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return t, err
}

func (r *SQLiteTaskRepo) List(ctx context.Context) ([]*domain.Task, error) {
	return r.query(ctx, "listing tasks",
		`SELECT `+taskColumns+` FROM tasks ORDER BY parent_id IS NOT NULL, parent_id, order_index, id`)
}

func (r *SQLiteTaskRepo) ListRoots(ctx context.Context) ([]*domain.Task, error) {
	return r.query(ctx, "listing root tasks",
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id IS NULL ORDER BY order_index, id`)
}

// TaskTree returns rootID and all of its descendants. A missing root yields
// an empty slice.
func (r *SQLiteTaskRepo) TaskTree(ctx context.Context, rootID int64) ([]domain.Task, error) {
	query := `WITH RECURSIVE subtree(id) AS (
			SELECT id FROM tasks WHERE id = ?
			UNION
			SELECT t.id FROM tasks t JOIN subtree s ON t.parent_id = s.id
		)
		SELECT ` + taskColumns + ` FROM tasks
		WHERE id IN (SELECT id FROM subtree)
		ORDER BY order_index, id`
	tasks, err := r.query(ctx, "loading task tree", query, rootID)
	if err != nil {
		return nil, err
	}
	return deref(tasks), nil
}

// TasksByID returns the tasks with the given ids; unknown ids are skipped.
func (r *SQLiteTaskRepo) TasksByID(ctx context.Context, ids []int64) ([]domain.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	tasks, err := r.query(ctx, "loading tasks by id", query, args...)
	if err != nil {
		return nil, err
	}
	return deref(tasks), nil
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTaskRepo) query(ctx context.Context, what, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return tasks, nil
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var t domain.Task
	var parentID, predecessorID sql.NullInt64
	var duration sql.NullFloat64
	var startDate, endDate sql.NullString
	var relation, createdAt, updatedAt string

	if err := s.Scan(
		&t.ID, &parentID, &t.Title, &t.OrderIndex, &duration, &startDate, &endDate,
		&predecessorID, &t.PredecessorOffset, &relation, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	t.ParentID = nullInt64Ptr(parentID)
	t.PredecessorID = nullInt64Ptr(predecessorID)
	t.Duration = nullFloatPtr(duration)
	t.StartDate = parseNullableDate(startDate)
	t.EndDate = parseNullableDate(endDate)
	t.RelationType, _ = domain.ParseRelationType(relation)
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	return &t, nil
}

func deref(tasks []*domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = *t
	}
	return out
}
