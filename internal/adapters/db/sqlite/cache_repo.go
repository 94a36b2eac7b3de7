package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"promptforge/internal/domain"
)

// CacheRepo is the persistent tier of the transform cache, keyed by the
// content hash of the call inputs.
type CacheRepo struct{ *Repo }

func NewCacheRepo(db *sql.DB) *CacheRepo { return &CacheRepo{NewRepo(db)} }

func (r *CacheRepo) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	q := r.SQ.Select("id", "key", "model", "result", "created_at").
		From("cache").Where(sq.Eq{"key": key}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var e domain.CacheEntry
	var created string
	if err := row.Scan(&e.ID, &e.Key, &e.Model, &e.Result, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e.CreatedAt = parseTime(created)
	return &e, nil
}

func (r *CacheRepo) Put(ctx context.Context, entry *domain.CacheEntry) error {
	q := r.SQ.Insert("cache").Columns("key", "model", "result", "created_at").
		Values(entry.Key, entry.Model, entry.Result, nowUTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET result=excluded.result")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
