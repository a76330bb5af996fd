package sqlutil

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Helper functions for converting between Go values and what the postgres driver expects

const uniqueViolation = "23505"

// UUIDStrings converts ids for use with `= ANY($1::uuid[])`.
func UUIDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// UniqueViolation reports whether err is a unique constraint violation and, if so, which constraint.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
