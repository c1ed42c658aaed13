package forms

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

const (
	msgAlreadyEnrolled = "Этот студент уже записан на данный курс."
	msgNoSeats         = "На этом курсе больше нет свободных мест."
	msgEnrollFailed    = "Не удалось записаться на курс. Попробуйте позже."
)

// EnrollmentChecker reports whether the pair already has an enrollment of any status.
type EnrollmentChecker interface {
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
}

// EnrollmentForm submits a student to a course. StudentID is only honoured for staff.
type EnrollmentForm struct {
	StudentID string `form:"student_id" json:"student_id" validate:"omitempty,uuid"`
}

// Clean checks the duplicate and capacity rules for student against course.
func (f *EnrollmentForm) Clean(ctx context.Context, enrollments EnrollmentChecker, studentID string, course models.Course) error {
	f.StudentID = strings.TrimSpace(f.StudentID)
	errs, err := check(f)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs.Err()
	}

	exists, err := enrollments.Exists(ctx, studentID, course.ID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if exists {
		errs.AddForm(msgAlreadyEnrolled)
	}
	if !course.HasAvailableSeats() {
		errs.AddForm(msgNoSeats)
	}
	return errs.Err()
}

// Values echoes the submitted input.
func (f EnrollmentForm) Values() map[string]string {
	if f.StudentID == "" {
		return nil
	}
	return map[string]string{"student_id": f.StudentID}
}

// EnrollmentRejected maps the transactional enrollment errors to form messages.
// Unexpected failures become a generic whole-form message.
func EnrollmentRejected(err error) error {
	errs := Errors{}
	switch {
	case err == nil:
		return nil
	case isErr(err, models.ErrDuplicateEnrollment):
		errs.AddForm(msgAlreadyEnrolled)
	case isErr(err, models.ErrCourseFull):
		errs.AddForm(msgNoSeats)
	default:
		errs.AddForm(msgEnrollFailed)
	}
	return errs.Err()
}
