package models

import (
	"errors"
	"time"
)

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. COMPLETED and CANCELLED are terminal.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

var (
	ErrDuplicateEnrollment = errors.New("student already enrolled in course")
	ErrCourseFull          = errors.New("course has no available seats")
	ErrInvalidTransition   = errors.New("invalid enrollment status transition")
)

// Label returns the status display name.
func (s EnrollmentStatus) Label() string {
	switch s {
	case EnrollmentStatusActive:
		return "Активен"
	case EnrollmentStatusCompleted:
		return "Завершен"
	case EnrollmentStatusCancelled:
		return "Отменен"
	default:
		return string(s)
	}
}

// CanTransitionTo reports whether the status machine allows s → next.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	return s == EnrollmentStatusActive && (next == EnrollmentStatusCompleted || next == EnrollmentStatusCancelled)
}

// Enrollment links one student to one course.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	CourseTitle  string `db:"course_title" json:"course_title"`
	CourseSlug   string `db:"course_slug" json:"course_slug"`
}
