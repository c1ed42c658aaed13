package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/pkg/database"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

const msgStudentNotFound = "Выберите существующего студента."

type enrollmentRepository interface {
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	CreateWithinCapacity(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	UpdateStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) error
}

type enrollmentCourseFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Course, error)
}

type enrollmentStudentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// EnrollmentPage is the enrollment form state for a course.
type EnrollmentPage struct {
	Course          models.CourseView `json:"course"`
	CanPickStudent  bool              `json:"can_pick_student"`
	AlreadyEnrolled bool              `json:"already_enrolled"`
}

// EnrollmentServiceParams groups constructor dependencies.
type EnrollmentServiceParams struct {
	Repo      enrollmentRepository
	Courses   enrollmentCourseFinder
	Students  enrollmentStudentFinder
	Audit     auditWriter
	Dashboard dashboardInvalidator
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// EnrollmentService enrolls students into courses and moves enrollments through their lifecycle.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   enrollmentCourseFinder
	students  enrollmentStudentFinder
	audit     auditWriter
	dashboard dashboardInvalidator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(params EnrollmentServiceParams) *EnrollmentService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      params.Repo,
		courses:   params.Courses,
		students:  params.Students,
		audit:     params.Audit,
		dashboard: params.Dashboard,
		metrics:   params.Metrics,
		logger:    logger,
	}
}

// Form returns what the enrollment form needs to render for the caller.
func (s *EnrollmentService) Form(ctx context.Context, identity *models.Identity, courseSlug string) (*EnrollmentPage, error) {
	course, err := s.activeCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	page := &EnrollmentPage{Course: course.View(), CanPickStudent: isStaff(identity)}
	if identity != nil && identity.Profile != nil {
		exists, err := s.repo.Exists(ctx, identity.Profile.ID, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		page.AlreadyEnrolled = exists
	}
	return page, nil
}

// Enroll validates the submission and creates an ACTIVE enrollment. Students
// always enroll themselves; teachers and admins may name another student.
// Unexpected persistence failures come back as a generic form error.
func (s *EnrollmentService) Enroll(ctx context.Context, identity *models.Identity, courseSlug string, form *forms.EnrollmentForm, meta RequestMeta) (*models.Enrollment, error) {
	if err := Authorize(identity); err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "login required")
	}
	course, err := s.activeCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	studentID, err := s.resolveStudent(ctx, identity, form)
	if err != nil {
		return nil, err
	}

	if err := form.Clean(ctx, s.repo, studentID, *course); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrValidation.Code {
			s.metrics.RecordEnrollment(outcomeFor(err))
			return nil, err
		}
		s.logger.Error("enrollment pre-check failed", zap.String("course_id", course.ID), zap.Error(err))
		s.metrics.RecordEnrollment(EnrollmentOutcomeFailed)
		return nil, forms.EnrollmentRejected(err)
	}

	enrollment := &models.Enrollment{StudentID: studentID, CourseID: course.ID}
	if err := s.repo.CreateWithinCapacity(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		case database.IsUniqueViolation(err, "enrollments_student_course_key"):
			err = models.ErrDuplicateEnrollment
		case !errors.Is(err, models.ErrDuplicateEnrollment) && !errors.Is(err, models.ErrCourseFull):
			s.logger.Error("enrollment failed", zap.String("course_id", course.ID), zap.String("student_id", studentID), zap.Error(err))
		}
		s.metrics.RecordEnrollment(outcomeFor(err))
		return nil, forms.EnrollmentRejected(err)
	}
	s.metrics.RecordEnrollment(EnrollmentOutcomeCreated)

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &identity.User.ID,
		Action:     models.AuditActionEnroll,
		Resource:   "enrollment",
		ResourceID: &enrollment.ID,
		NewValues:  auditValues(map[string]string{"student_id": studentID, "course_id": course.ID}),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})
	s.invalidate(ctx)
	return enrollment, nil
}

// Cancel moves an ACTIVE enrollment to CANCELLED. The enrolled student and
// staff may cancel.
func (s *EnrollmentService) Cancel(ctx context.Context, identity *models.Identity, id string, meta RequestMeta) (*models.EnrollmentDetail, error) {
	return s.transition(ctx, identity, id, models.EnrollmentStatusCancelled, meta)
}

// Complete moves an ACTIVE enrollment to COMPLETED. Staff only.
func (s *EnrollmentService) Complete(ctx context.Context, identity *models.Identity, id string, meta RequestMeta) (*models.EnrollmentDetail, error) {
	if !isStaff(identity) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers and administrators may complete enrollments")
	}
	return s.transition(ctx, identity, id, models.EnrollmentStatusCompleted, meta)
}

func (s *EnrollmentService) transition(ctx context.Context, identity *models.Identity, id string, to models.EnrollmentStatus, meta RequestMeta) (*models.EnrollmentDetail, error) {
	if identity == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "login required")
	}
	enrollment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	owner := identity.Profile != nil && identity.Profile.ID == enrollment.StudentID
	if !owner && !isStaff(identity) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another student")
	}
	if !enrollment.Status.CanTransitionTo(to) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is no longer active")
	}

	if err := s.repo.UpdateStatus(ctx, enrollment.ID, enrollment.Status, to); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is no longer active")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	from := enrollment.Status
	enrollment.Status = to

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &identity.User.ID,
		Action:     models.AuditActionEnrollmentEdit,
		Resource:   "enrollment",
		ResourceID: &enrollment.ID,
		NewValues:  auditValues(map[string]string{"from": string(from), "to": string(to)}),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})
	s.invalidate(ctx)
	return enrollment, nil
}

func (s *EnrollmentService) resolveStudent(ctx context.Context, identity *models.Identity, form *forms.EnrollmentForm) (string, error) {
	if isStaff(identity) && form.StudentID != "" {
		if _, err := uuid.Parse(form.StudentID); err != nil {
			return "", appErrors.FieldError("student_id", msgStudentNotFound)
		}
		student, err := s.students.FindByID(ctx, form.StudentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", appErrors.FieldError("student_id", msgStudentNotFound)
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if !student.Active {
			return "", appErrors.FieldError("student_id", msgStudentNotFound)
		}
		return student.ID, nil
	}
	if identity.Profile == nil {
		return "", appErrors.Clone(appErrors.ErrForbidden, "student profile required")
	}
	// Students cannot enroll anyone else.
	form.StudentID = ""
	return identity.Profile.ID, nil
}

func (s *EnrollmentService) activeCourse(ctx context.Context, courseSlug string) (*models.Course, error) {
	course, err := s.courses.FindBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

func (s *EnrollmentService) find(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) invalidate(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, models.ErrDuplicateEnrollment):
		return EnrollmentOutcomeDuplicate
	case errors.Is(err, models.ErrCourseFull):
		return EnrollmentOutcomeFull
	}
	if appErrors.FromError(err).Code == appErrors.ErrValidation.Code {
		return EnrollmentOutcomeRejected
	}
	return EnrollmentOutcomeFailed
}
