package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/models"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

// StudentsPageSize is the students listing page size.
const StudentsPageSize = 10

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, models.Pagination, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Delete(ctx context.Context, id string) error
}

type studentEnrollmentLister interface {
	ListByStudent(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error)
}

type avatarLinker interface {
	AvatarURL(ownerID, relPath string) string
}

type dashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// StudentService exposes the public student directory.
type StudentService struct {
	repo        studentRepository
	enrollments studentEnrollmentLister
	avatars     avatarLinker
	dashboard   dashboardInvalidator
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, enrollments studentEnrollmentLister, avatars avatarLinker, dashboard dashboardInvalidator, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, enrollments: enrollments, avatars: avatars, dashboard: dashboard, logger: logger}
}

// List returns a page of active students.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = StudentsPageSize
	}
	students, pagination, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	for i := range students {
		s.attachAvatar(&students[i])
	}
	return students, pagination, nil
}

// Get returns an active student with their active enrollments.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, student.ID, models.EnrollmentStatusActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	if enrollments == nil {
		enrollments = []models.EnrollmentDetail{}
	}
	s.attachAvatar(student)
	return &models.StudentDetail{
		Student:      *student,
		FacultyLabel: student.Faculty.Label(),
		Enrollments:  enrollments,
	}, nil
}

// Delete removes a student and, through the schema, their enrollments.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
	return nil
}

func (s *StudentService) attachAvatar(student *models.Student) {
	if s.avatars == nil {
		return
	}
	student.AvatarURL = s.avatars.AvatarURL(student.ID, student.Avatar)
}
