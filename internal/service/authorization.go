package service

import (
	"errors"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

// Authorization outcomes. The role gate maps the first to a login redirect and
// the others to a redirect home.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNoProfile       = errors.New("account has no profile")
	ErrForbidden       = errors.New("role not permitted")
)

// Authorize checks that identity is logged in and, when roles are given, that
// its profile carries one of them.
func Authorize(identity *models.Identity, roles ...models.Role) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	if identity.Profile == nil {
		return ErrNoProfile
	}
	if !identity.HasRole(roles...) {
		return ErrForbidden
	}
	return nil
}

// Role sets used by the dashboards and management routes.
var (
	StudentOnly    = []models.Role{models.RoleStudent}
	TeacherOrAdmin = []models.Role{models.RoleTeacher, models.RoleAdmin}
	AdminOnly      = []models.Role{models.RoleAdmin}
)

// isStaff reports whether the caller may act on other students' enrollments.
func isStaff(identity *models.Identity) bool {
	return identity.HasRole(TeacherOrAdmin...)
}
