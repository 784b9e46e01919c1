package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/micromata/projectforge-sub017/internal/db"
	"github.com/micromata/projectforge-sub017/internal/domain"
)

// SQLiteHolidayRepo implements HolidayRepo. Holidays are keyed by date.
type SQLiteHolidayRepo struct {
	db db.DBTX
}

func NewSQLiteHolidayRepo(conn db.DBTX) *SQLiteHolidayRepo {
	return &SQLiteHolidayRepo{db: conn}
}

func (r *SQLiteHolidayRepo) Upsert(ctx context.Context, h domain.Holiday) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO holidays (date, name) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name`,
		h.Date.Format(domain.DateLayout), h.Name)
	if err != nil {
		return fmt.Errorf("upserting holiday: %w", err)
	}
	return nil
}

func (r *SQLiteHolidayRepo) Delete(ctx context.Context, date time.Time) error {
	key := date.Format(domain.DateLayout)
	res, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE date = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting holiday: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("holiday %s: %w", key, ErrNotFound)
	}
	return nil
}

func (r *SQLiteHolidayRepo) List(ctx context.Context) ([]domain.Holiday, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, name FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("listing holidays: %w", err)
	}
	defer rows.Close()

	var out []domain.Holiday
	for rows.Next() {
		var dateStr, name string
		if err := rows.Scan(&dateStr, &name); err != nil {
			return nil, fmt.Errorf("scanning holiday row: %w", err)
		}
		d, err := domain.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("holiday row: %w", err)
		}
		out = append(out, domain.Holiday{Date: d, Name: name})
	}
	return out, rows.Err()
}
