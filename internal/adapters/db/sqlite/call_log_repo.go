package sqlite

import (
	"context"
	"database/sql"

	"promptforge/internal/domain"
)

// CallLogRepo keeps the audit trail of external transform calls.
type CallLogRepo struct{ *Repo }

func NewCallLogRepo(db *sql.DB) *CallLogRepo { return &CallLogRepo{NewRepo(db)} }

func (r *CallLogRepo) Add(ctx context.Context, rec *domain.CallRecord) error {
	q := r.SQ.Insert("call_log").Columns("kind", "model", "status", "error", "duration_ms", "created_at").
		Values(rec.Kind, rec.Model, rec.Status, rec.Error, rec.DurationMS, nowUTC())
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	rec.ID = id
	return nil
}

func (r *CallLogRepo) List(ctx context.Context, limit int) ([]*domain.CallRecord, error) {
	q := r.SQ.Select("id", "kind", "model", "status", "error", "duration_ms", "created_at").
		From("call_log").OrderBy("id DESC").Limit(uint64(limit))
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.CallRecord
	for rows.Next() {
		var rec domain.CallRecord
		var created string
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Model, &rec.Status, &rec.Error, &rec.DurationMS, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = parseTime(created)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
