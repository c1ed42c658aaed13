package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourseLevel is the difficulty of a course.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "BEGINNER"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
	LevelAdvanced     CourseLevel = "ADVANCED"
)

var levelLabels = map[CourseLevel]string{
	LevelBeginner:     "Начальный",
	LevelIntermediate: "Средний",
	LevelAdvanced:     "Продвинутый",
}

// Valid reports whether l is a known level.
func (l CourseLevel) Valid() bool {
	_, ok := levelLabels[l]
	return ok
}

// Label returns the level display name.
func (l CourseLevel) Label() string {
	return levelLabels[l]
}

// Capacity bounds for a course.
const (
	MinCourseCapacity     = 1
	MaxCourseCapacity     = 100
	DefaultCourseCapacity = 30
)

// Course is an offered course. EnrolledCount counts ACTIVE enrollments only.
type Course struct {
	ID             string          `db:"id" json:"id"`
	Title          string          `db:"title" json:"title"`
	Slug           string          `db:"slug" json:"slug"`
	Description    string          `db:"description" json:"description"`
	Duration       int             `db:"duration" json:"duration"`
	InstructorID   *string         `db:"instructor_id" json:"instructor_id,omitempty"`
	InstructorName *string         `db:"instructor_name" json:"instructor_name,omitempty"`
	Level          CourseLevel     `db:"level" json:"level"`
	MaxStudents    int             `db:"max_students" json:"max_students"`
	Price          decimal.Decimal `db:"price" json:"price"`
	Active         bool            `db:"active" json:"active"`
	EnrolledCount  int             `db:"enrolled_count" json:"enrolled_count"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// HasAvailableSeats reports enrolled_count < max_students.
func (c Course) HasAvailableSeats() bool {
	return c.EnrolledCount < c.MaxStudents
}

// CourseView is the JSON shape of a course including derived values.
type CourseView struct {
	Course
	LevelLabel        string `json:"level_label"`
	HasAvailableSeats bool   `json:"has_available_seats"`
}

// View attaches the derived fields.
func (c Course) View() CourseView {
	return CourseView{Course: c, LevelLabel: c.Level.Label(), HasAvailableSeats: c.HasAvailableSeats()}
}

// CourseFilter captures listing options.
type CourseFilter struct {
	Search   string
	Level    CourseLevel
	Page     int
	PageSize int
}

// CourseDetail is a course with its instructor and active roster.
type CourseDetail struct {
	CourseView
	Instructor *Instructor        `json:"instructor,omitempty"`
	Roster     []EnrollmentDetail `json:"roster"`
}
