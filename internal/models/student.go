package models

import (
	"strings"
	"time"
)

// Faculty identifies a student's faculty.
type Faculty string

const (
	FacultyCS  Faculty = "CS"
	FacultySE  Faculty = "SE"
	FacultyIT  Faculty = "IT"
	FacultyDS  Faculty = "DS"
	FacultyWEB Faculty = "WEB"
)

var facultyLabels = map[Faculty]string{
	FacultyCS:  "Кибербезопасность",
	FacultySE:  "Программная инженерия",
	FacultyIT:  "Информационные технологии",
	FacultyDS:  "Наука о данных",
	FacultyWEB: "Веб-технологии",
}

// Faculties lists every faculty in display order.
func Faculties() []Faculty {
	return []Faculty{FacultyCS, FacultySE, FacultyIT, FacultyDS, FacultyWEB}
}

// Valid reports whether f is a known faculty.
func (f Faculty) Valid() bool {
	_, ok := facultyLabels[f]
	return ok
}

// Label returns the faculty display name.
func (f Faculty) Label() string {
	if label, ok := facultyLabels[f]; ok {
		return label
	}
	return "Неизвестно"
}

// Student is the profile linked to an account. Name and email come from the
// account when UserID is set and from the row itself for standalone records.
type Student struct {
	ID        string     `db:"id" json:"id"`
	UserID    *string    `db:"user_id" json:"user_id,omitempty"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     string     `db:"email" json:"email"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Faculty   Faculty    `db:"faculty" json:"faculty"`
	Role      Role       `db:"role" json:"role"`
	Phone     string     `db:"phone" json:"phone"`
	Avatar    string     `db:"avatar" json:"-"`
	AvatarURL string     `db:"-" json:"avatar_url,omitempty"`
	Bio       string     `db:"bio" json:"bio"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns "First Last".
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Faculty  Faculty
	Page     int
	PageSize int
}

// StudentDetail is a student together with their active enrollments.
type StudentDetail struct {
	Student
	FacultyLabel string             `json:"faculty_label"`
	Enrollments  []EnrollmentDetail `json:"enrollments"`
}

// ProfileUpdate carries the editable part of an account and its profile.
type ProfileUpdate struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Bio       string
	Faculty   Faculty
	Avatar    *string
}
