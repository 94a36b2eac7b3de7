package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"promptforge/internal/domain"
)

type RevisionRepo struct{ *Repo }

func NewRevisionRepo(db *sql.DB) *RevisionRepo { return &RevisionRepo{NewRepo(db)} }

// Append stores r as the next revision of its prompt. Revisions are never
// updated in place; saving always produces a new row with the next number.
func (r *RevisionRepo) Append(ctx context.Context, rev *domain.Revision) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var next int
		row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(number), 0) + 1 FROM revisions WHERE prompt_id = ?`, rev.PromptID)
		if err := row.Scan(&next); err != nil {
			return err
		}
		now := nowUTC()
		q := r.SQ.Insert("revisions").
			Columns("prompt_id", "number", "description", "instruction", "body", "note", "created_at").
			Values(rev.PromptID, next, rev.Description, rev.Instruction, rev.Body, rev.Note, now)
		sqlStr, args, _ := q.ToSql()
		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		id, _ := res.LastInsertId()
		rev.ID = id
		rev.Number = next
		rev.CreatedAt = parseTime(now)
		_, err = tx.ExecContext(ctx, `UPDATE prompts SET updated_at = ? WHERE id = ?`, now, rev.PromptID)
		return err
	})
}

func (r *RevisionRepo) Get(ctx context.Context, id int64) (*domain.Revision, error) {
	q := r.selectCols().Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	return r.scanOne(r.DB.QueryRowContext(ctx, sqlStr, args...))
}

func (r *RevisionRepo) Latest(ctx context.Context, promptID int64) (*domain.Revision, error) {
	q := r.selectCols().Where(sq.Eq{"prompt_id": promptID}).OrderBy("number DESC").Limit(1)
	sqlStr, args, _ := q.ToSql()
	return r.scanOne(r.DB.QueryRowContext(ctx, sqlStr, args...))
}

func (r *RevisionRepo) ListByPrompt(ctx context.Context, promptID int64) ([]*domain.Revision, error) {
	q := r.selectCols().Where(sq.Eq{"prompt_id": promptID}).OrderBy("number ASC")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (r *RevisionRepo) selectCols() sq.SelectBuilder {
	return r.SQ.Select("id", "prompt_id", "number", "description", "instruction", "body", "note", "created_at").From("revisions")
}

func (r *RevisionRepo) scanOne(row *sql.Row) (*domain.Revision, error) {
	rev, err := scanRevision(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func scanRevision(s rowScanner) (*domain.Revision, error) {
	var rev domain.Revision
	var created string
	if err := s.Scan(&rev.ID, &rev.PromptID, &rev.Number, &rev.Description, &rev.Instruction, &rev.Body, &rev.Note, &created); err != nil {
		return nil, err
	}
	rev.CreatedAt = parseTime(created)
	return &rev, nil
}
