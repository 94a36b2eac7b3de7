package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"promptforge/internal/domain"
)

type EndpointRepo struct{ *Repo }

func NewEndpointRepo(db *sql.DB) *EndpointRepo { return &EndpointRepo{NewRepo(db)} }

func (r *EndpointRepo) Create(ctx context.Context, e *domain.Endpoint) error {
	now := nowUTC()
	q := r.SQ.Insert("endpoints").Columns("type", "name", "base_url", "model", "api_key", "created_at", "updated_at").
		Values(e.Type, e.Name, e.BaseURL, e.Model, e.APIKey, now, now)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.ID = id
	return nil
}

func (r *EndpointRepo) Update(ctx context.Context, e *domain.Endpoint) error {
	now := nowUTC()
	q := r.SQ.Update("endpoints").
		Set("type", e.Type).Set("name", e.Name).Set("base_url", e.BaseURL).
		Set("model", e.Model).Set("api_key", e.APIKey).Set("updated_at", now).
		Where(sq.Eq{"id": e.ID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *EndpointRepo) Get(ctx context.Context, id int64) (*domain.Endpoint, error) {
	q := r.SQ.Select("id", "type", "name", "base_url", "model", "api_key", "created_at", "updated_at").
		From("endpoints").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var e domain.Endpoint
	var created, updated string
	if err := row.Scan(&e.ID, &e.Type, &e.Name, &e.BaseURL, &e.Model, &e.APIKey, &created, &updated); err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return &e, nil
}

func (r *EndpointRepo) List(ctx context.Context) ([]*domain.Endpoint, error) {
	q := r.SQ.Select("id", "type", "name", "base_url", "model", "api_key", "created_at", "updated_at").
		From("endpoints").OrderBy("id DESC")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Endpoint
	for rows.Next() {
		var e domain.Endpoint
		var created, updated string
		if err := rows.Scan(&e.ID, &e.Type, &e.Name, &e.BaseURL, &e.Model, &e.APIKey, &created, &updated); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(created)
		e.UpdatedAt = parseTime(updated)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *EndpointRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("endpoints").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *EndpointRepo) SaveModelCache(ctx context.Context, endpointID int64, names []string) error {
	// simple approach: delete existing then insert
	del := r.SQ.Delete("endpoint_models").Where(sq.Eq{"endpoint_id": endpointID})
	sqlStr, args, _ := del.ToSql()
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	ib := r.SQ.Insert("endpoint_models").Columns("endpoint_id", "name")
	for _, n := range names {
		ib = ib.Values(endpointID, n)
	}
	sqlStr, args, _ = ib.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *EndpointRepo) ListModelCache(ctx context.Context, endpointID int64) ([]*domain.EndpointModel, error) {
	q := r.SQ.Select("id", "endpoint_id", "name", "updated_at").From("endpoint_models").
		Where(sq.Eq{"endpoint_id": endpointID}).OrderBy("name")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.EndpointModel
	for rows.Next() {
		var em domain.EndpointModel
		var updated string
		if err := rows.Scan(&em.ID, &em.EndpointID, &em.Name, &updated); err != nil {
			return nil, err
		}
		em.UpdatedAt = parseTime(updated)
		out = append(out, &em)
	}
	return out, rows.Err()
}
