package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/pkg/database"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

// CoursesPageSize is the course catalogue page size.
const CoursesPageSize = 9

const (
	msgCourseExists       = "Курс с таким названием уже существует."
	msgSlugInvalid        = "Не удалось построить адрес курса из названия."
	msgInstructorNotFound = "Выберите существующего преподавателя."
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, models.Pagination, error)
	FindBySlug(ctx context.Context, slug string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type instructorFinder interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type rosterLister interface {
	ListByCourse(ctx context.Context, courseID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error)
}

// CourseService manages the course catalogue.
type CourseService struct {
	repo        courseRepository
	instructors instructorFinder
	roster      rosterLister
	dashboard   dashboardInvalidator
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, instructors instructorFinder, roster rosterLister, dashboard dashboardInvalidator, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, instructors: instructors, roster: roster, dashboard: dashboard, logger: logger}
}

// List returns a page of active courses, newest first.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseView, models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = CoursesPageSize
	}
	courses, pagination, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	views := make([]models.CourseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, course.View())
	}
	return views, pagination, nil
}

// Get returns an active course by slug.
func (s *CourseService) Get(ctx context.Context, courseSlug string) (*models.Course, error) {
	course, err := s.find(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// Detail returns an active course with its instructor and active roster.
func (s *CourseService) Detail(ctx context.Context, courseSlug string) (*models.CourseDetail, error) {
	course, err := s.Get(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	detail := &models.CourseDetail{CourseView: course.View()}

	if course.InstructorID != nil {
		instructor, err := s.instructors.FindByID(ctx, *course.InstructorID)
		switch {
		case err == nil:
			detail.Instructor = instructor
		case !errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
		}
	}

	roster, err := s.roster.ListByCourse(ctx, course.ID, models.EnrollmentStatusActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if roster == nil {
		roster = []models.EnrollmentDetail{}
	}
	detail.Roster = roster
	return detail, nil
}

// Create validates the form and inserts a course. Without an explicit slug one
// is derived from the title; a collision is reported on the title field.
func (s *CourseService) Create(ctx context.Context, form *forms.CourseForm) (*models.Course, error) {
	in, err := form.Clean()
	if err != nil {
		return nil, err
	}

	courseSlug := in.Slug
	if courseSlug == "" {
		courseSlug = slug.Make(in.Title)
	}
	if courseSlug == "" || !slug.IsSlug(courseSlug) {
		return nil, appErrors.FieldError("slug", msgSlugInvalid)
	}
	if err := s.checkInstructor(ctx, in.InstructorID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:        in.Title,
		Slug:         courseSlug,
		Description:  in.Description,
		Duration:     in.Duration,
		InstructorID: in.InstructorID,
		Level:        in.Level,
		MaxStudents:  in.MaxStudents,
		Price:        in.Price,
		Active:       in.Active,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, s.writeError(err, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("slug", course.Slug))
	s.invalidate(ctx)
	return course, nil
}

// Update edits an existing course. The slug never changes.
func (s *CourseService) Update(ctx context.Context, courseSlug string, form *forms.CourseForm) (*models.Course, error) {
	course, err := s.find(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	in, err := form.Clean()
	if err != nil {
		return nil, err
	}
	if err := s.checkInstructor(ctx, in.InstructorID); err != nil {
		return nil, err
	}

	course.Title = in.Title
	course.Description = in.Description
	course.Duration = in.Duration
	course.InstructorID = in.InstructorID
	course.Level = in.Level
	course.MaxStudents = in.MaxStudents
	course.Price = in.Price
	course.Active = in.Active
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, s.writeError(err, "failed to update course")
	}
	s.invalidate(ctx)
	return course, nil
}

// Delete removes a course and its enrollments.
func (s *CourseService) Delete(ctx context.Context, courseSlug string) error {
	course, err := s.find(ctx, courseSlug)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, course.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", course.ID), zap.String("slug", course.Slug))
	s.invalidate(ctx)
	return nil
}

func (s *CourseService) find(ctx context.Context, courseSlug string) (*models.Course, error) {
	course, err := s.repo.FindBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (s *CourseService) checkInstructor(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return appErrors.FieldError("instructor_id", msgInstructorNotFound)
	}
	if _, err := s.instructors.FindByID(ctx, *id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.FieldError("instructor_id", msgInstructorNotFound)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return nil
}

// writeError maps title or slug collisions to a title field error.
func (s *CourseService) writeError(err error, message string) error {
	if violation := constraintViolation(err); violation != nil {
		if database.IsUniqueViolation(err, "courses_title_key") || database.IsUniqueViolation(err, "courses_slug_key") {
			return appErrors.AsValidation(violation, "title", msgCourseExists)
		}
		return violation
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}
