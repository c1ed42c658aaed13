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

const msgInstructorEmailTaken = "Преподаватель с таким email уже существует."

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, models.Pagination, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id string) error
}

// InstructorService manages instructors for administrators.
type InstructorService struct {
	repo      instructorRepository
	dashboard dashboardInvalidator
	logger    *zap.Logger
}

// NewInstructorService constructs an InstructorService.
func NewInstructorService(repo instructorRepository, dashboard dashboardInvalidator, logger *zap.Logger) *InstructorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, dashboard: dashboard, logger: logger}
}

// List returns a page of instructors.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	instructors, pagination, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	if instructors == nil {
		instructors = []models.Instructor{}
	}
	return instructors, pagination, nil
}

// Create validates and inserts an instructor.
func (s *InstructorService) Create(ctx context.Context, form *forms.InstructorForm) (*models.Instructor, error) {
	instructor, err := form.Clean()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &instructor); err != nil {
		return nil, s.writeError(err, "failed to create instructor")
	}
	s.invalidate(ctx)
	return &instructor, nil
}

// Update replaces an instructor's fields.
func (s *InstructorService) Update(ctx context.Context, id string, form *forms.InstructorForm) (*models.Instructor, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	instructor, err := form.Clean()
	if err != nil {
		return nil, err
	}
	instructor.ID = existing.ID
	instructor.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, &instructor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, s.writeError(err, "failed to update instructor")
	}
	s.invalidate(ctx)
	return &instructor, nil
}

// Delete removes an instructor. Their courses remain without one.
func (s *InstructorService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return s.writeError(err, "failed to delete instructor")
	}
	s.logger.Info("instructor deleted", zap.String("instructor_id", id))
	s.invalidate(ctx)
	return nil
}

func (s *InstructorService) find(ctx context.Context, id string) (*models.Instructor, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}

func (s *InstructorService) writeError(err error, message string) error {
	if violation := constraintViolation(err); violation != nil {
		if database.IsUniqueViolation(err, "") {
			return appErrors.AsValidation(violation, "email", msgInstructorEmailTaken)
		}
		return violation
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *InstructorService) invalidate(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}
