package database

import "strings"

// PostgreSQL error classes we branch on. Constraint violations coming back
// from the write are the authoritative conflict signal; pre-checks only
// exist for friendlier messages.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return containsErrorCode(err, pgUniqueViolation)
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return containsErrorCode(err, pgForeignKeyViolation)
}

// IsConstraint reports whether err mentions the named constraint. Used to
// tell apart multiple unique indexes on the same table.
func IsConstraint(err error, constraint string) bool {
	return err != nil && strings.Contains(err.Error(), constraint)
}

func containsErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	// pgx wraps the server error, so match on the SQLSTATE in the message
	errStr := err.Error()
	return strings.Contains(errStr, "SQLSTATE "+code) || strings.Contains(errStr, code)
}
