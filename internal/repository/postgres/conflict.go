package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (code 23505) surfaced by either driver this module links:
// pgx's *pgconn.PgError or lib/pq's *pq.Error. Both are checked because the
// two drivers wrap errors differently depending on which code path produced
// them (GORM's postgres dialector vs. database/sql's pq driver).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
