package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"promptforge/internal/domain"
)

type TemplateRepo struct{ *Repo }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{NewRepo(db)} }

// GetEffective resolves endpoint -> global -> nil (builtin handled by caller).
func (r *TemplateRepo) GetEffective(ctx context.Context, scope string, refID *int64, kind, role string) (*domain.InstructionTemplate, error) {
	if scope == "endpoint" && refID != nil {
		t, err := r.getOne(ctx, scope, refID, kind, role)
		if err == nil && t != nil {
			return t, nil
		}
	}
	t, err := r.getOne(ctx, "global", nil, kind, role)
	if err == nil && t != nil {
		return t, nil
	}
	return nil, err
}

func (r *TemplateRepo) getOne(ctx context.Context, scope string, refID *int64, kind, role string) (*domain.InstructionTemplate, error) {
	b := r.SQ.Select("id", "scope", "ref_id", "kind", "role", "body", "is_default", "updated_at").From("templates").
		Where(sq.Eq{"scope": scope, "kind": kind, "role": role}).
		OrderBy("id DESC").Limit(1)
	if refID != nil {
		b = b.Where(sq.Eq{"ref_id": *refID})
	} else {
		b = b.Where("ref_id IS NULL")
	}
	sqlStr, args, _ := b.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var t domain.InstructionTemplate
	var ref sql.NullInt64
	var updated string
	if err := row.Scan(&t.ID, &t.Scope, &ref, &t.Kind, &t.Role, &t.Body, &t.IsDefault, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if ref.Valid {
		v := ref.Int64
		t.RefID = &v
	}
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func (r *TemplateRepo) Upsert(ctx context.Context, t *domain.InstructionTemplate) error {
	q := r.SQ.Insert("templates").Columns("scope", "ref_id", "kind", "role", "body", "is_default").
		Values(t.Scope, t.RefID, t.Kind, t.Role, t.Body, t.IsDefault)
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
