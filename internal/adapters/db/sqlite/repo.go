package sqlite

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Repo is the shared base of the sqlite repositories: the connection plus a
// Squirrel builder configured for sqlite's ? placeholders.
type Repo struct {
	DB *sql.DB
	SQ sq.StatementBuilderType
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db, SQ: sq.StatementBuilder}
}

// rowScanner abstracts *sql.Row and *sql.Rows so scan helpers serve both
// single-row gets and list queries.
type rowScanner interface {
	Scan(dest ...any) error
}

// Timestamps are stored as RFC 3339 UTC text columns.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
