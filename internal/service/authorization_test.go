package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

func TestAuthorize(t *testing.T) {
	student := &models.Identity{Profile: &models.Student{Role: models.RoleStudent}}
	admin := &models.Identity{Profile: &models.Student{Role: models.RoleAdmin}}
	noProfile := &models.Identity{User: models.User{ID: "u1"}}

	cases := []struct {
		name     string
		identity *models.Identity
		roles    []models.Role
		want     error
	}{
		{"anonymous", nil, nil, ErrUnauthenticated},
		{"anonymous gated", nil, AdminOnly, ErrUnauthenticated},
		{"login only without profile", noProfile, nil, nil},
		{"gated without profile", noProfile, StudentOnly, ErrNoProfile},
		{"student on student route", student, StudentOnly, nil},
		{"student on admin route", student, AdminOnly, ErrForbidden},
		{"admin on teacher route", admin, TeacherOrAdmin, nil},
		{"admin on student route", admin, StudentOnly, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Authorize(tc.identity, tc.roles...))
		})
	}
}
