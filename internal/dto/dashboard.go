package dto

import "github.com/noah-isme/fefu-lab-api/internal/models"

// HomeSummary is the landing page payload.
type HomeSummary struct {
	TotalStudents    int                 `json:"total_students"`
	TotalCourses     int                 `json:"total_courses"`
	TotalInstructors int                 `json:"total_instructors"`
	RecentCourses    []models.CourseView `json:"recent_courses"`
}

// AdminDashboardResponse aggregates counts for administrators.
type AdminDashboardResponse struct {
	TotalStudents        int                             `json:"total_students"`
	TotalCourses         int                             `json:"total_courses"`
	TotalInstructors     int                             `json:"total_instructors"`
	EnrollmentsByStatus  map[models.EnrollmentStatus]int `json:"enrollments_by_status"`
	ActiveEnrollmentRate float64                         `json:"active_enrollment_rate"`
}

// CourseLoad describes seat usage of one course on the teacher dashboard.
type CourseLoad struct {
	Course     models.CourseView `json:"course"`
	SeatsTaken int               `json:"seats_taken"`
	SeatsLeft  int               `json:"seats_left"`
	Occupancy  float64           `json:"occupancy"`
}

// TeacherDashboardResponse lists active courses with their seat usage.
type TeacherDashboardResponse struct {
	Courses []CourseLoad `json:"courses"`
}

// StudentDashboardResponse shows the caller's own enrollments.
type StudentDashboardResponse struct {
	Profile     models.Student            `json:"profile"`
	Enrollments []models.EnrollmentDetail `json:"enrollments"`
	ActiveCount int                       `json:"active_count"`
}
