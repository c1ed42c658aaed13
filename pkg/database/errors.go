package database

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint failure.
// An empty constraint matches any unique constraint.
func IsUniqueViolation(err error, constraint string) bool {
	return hasCode(err, uniqueViolation, constraint)
}

// IsForeignKeyViolation reports whether err is a foreign key failure.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolation, "")
}

// IsCheckViolation reports whether err is a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	return hasCode(err, checkViolation, "")
}

// ConstraintName extracts the violated constraint, if any.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func hasCode(err error, code, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if string(pqErr.Code) != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
