package db

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Postgres surfaces these as pq errors with SQLSTATE 23505; the sqlite test
// driver reports them as plain "UNIQUE constraint failed" errors, so both are
// recognized. Used to resolve create races on rows guarded by unique indexes
// (one cart per owner, one line per SKU+size).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
