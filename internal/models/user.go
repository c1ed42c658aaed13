package models

import (
	"strings"
	"time"
)

// Role is the authorization tier stored on a profile.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

var roleLabels = map[Role]string{
	RoleStudent: "Студент",
	RoleTeacher: "Преподаватель",
	RoleAdmin:   "Администратор",
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the human readable role name.
func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// User is an account identity stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Active       *bool      `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive treats an unset flag as active.
func (u User) IsActive() bool {
	return u.Active == nil || *u.Active
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination clamps page into [1, last page] the way the listing pages expect.
func NewPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = 10
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return Pagination{Page: page, PageSize: pageSize, TotalCount: total, TotalPages: pages}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
