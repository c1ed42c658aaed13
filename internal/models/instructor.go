package models

import (
	"strings"
	"time"
)

// Degree is an instructor's academic degree.
type Degree string

const (
	DegreeNone     Degree = ""
	DegreeBachelor Degree = "BACHELOR"
	DegreeMaster   Degree = "MASTER"
	DegreePhD      Degree = "PHD"
	DegreeDSc      Degree = "DSC"
)

var degreeLabels = map[Degree]string{
	DegreeBachelor: "Бакалавр",
	DegreeMaster:   "Магистр",
	DegreePhD:      "Кандидат наук",
	DegreeDSc:      "Доктор наук",
}

// Valid accepts the empty degree as well as the known ones.
func (d Degree) Valid() bool {
	if d == DegreeNone {
		return true
	}
	_, ok := degreeLabels[d]
	return ok
}

// Label returns the degree display name.
func (d Degree) Label() string {
	return degreeLabels[d]
}

// Instructor teaches courses.
type Instructor struct {
	ID             string    `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          string    `db:"email" json:"email"`
	Specialization string    `db:"specialization" json:"specialization"`
	Degree         Degree    `db:"degree" json:"degree"`
	Bio            string    `db:"bio" json:"bio"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// FullName returns "First Last".
func (i Instructor) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// InstructorFilter captures filtering options for listing instructors.
type InstructorFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
