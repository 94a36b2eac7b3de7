package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"promptforge/internal/domain"
)

type PromptRepo struct{ *Repo }

func NewPromptRepo(db *sql.DB) *PromptRepo { return &PromptRepo{NewRepo(db)} }

func (r *PromptRepo) Create(ctx context.Context, p *domain.Prompt) error {
	now := nowUTC()
	q := r.SQ.Insert("prompts").Columns("name", "created_at", "updated_at").
		Values(p.Name, now, now)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	p.ID = id
	p.CreatedAt = parseTime(now)
	p.UpdatedAt = parseTime(now)
	return nil
}

func (r *PromptRepo) Get(ctx context.Context, id int64) (*domain.Prompt, error) {
	q := r.SQ.Select("id", "name", "created_at", "updated_at").From("prompts").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var p domain.Prompt
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

func (r *PromptRepo) List(ctx context.Context) ([]*domain.Prompt, error) {
	q := r.SQ.Select("id", "name", "created_at", "updated_at").From("prompts").OrderBy("id DESC")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Prompt
	for rows.Next() {
		var p domain.Prompt
		var created, updated string
		if err := rows.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(created)
		p.UpdatedAt = parseTime(updated)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PromptRepo) Rename(ctx context.Context, id int64, name string) error {
	now := nowUTC()
	q := r.SQ.Update("prompts").Set("name", name).Set("updated_at", now).Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *PromptRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("prompts").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
