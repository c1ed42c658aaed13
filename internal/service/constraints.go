package service

import (
	"github.com/noah-isme/fefu-lab-api/pkg/database"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

// constraintViolation turns database integrity failures into CONSTRAINT_VIOLATION.
// Other errors are returned as nil so callers can fall through to their own handling.
func constraintViolation(err error) *appErrors.Error {
	if !database.IsUniqueViolation(err, "") && !database.IsForeignKeyViolation(err) && !database.IsCheckViolation(err) {
		return nil
	}
	violation := appErrors.Clone(appErrors.ErrConstraintViolation, "constraint violation: "+database.ConstraintName(err))
	violation.Err = err
	return violation
}
