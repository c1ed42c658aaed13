package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/dto"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

const (
	cacheKeyHome           = "home"
	cacheKeyAdminDashboard = "dash:admin"
	recentCoursesLimit     = 3
)

type activeCounter interface {
	CountActive(ctx context.Context) (int, error)
}

type dashboardCourseRepository interface {
	CountActive(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]models.Course, error)
	ListActive(ctx context.Context) ([]models.Course, error)
}

type dashboardEnrollmentRepository interface {
	CountByStatus(ctx context.Context, status models.EnrollmentStatus) (int, error)
	ListByStudent(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students    activeCounter
	Instructors activeCounter
	Courses     dashboardCourseRepository
	Enrollments dashboardEnrollmentRepository
	Cache       *CacheService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// DashboardService composes the landing page and the role dashboards.
type DashboardService struct {
	students    activeCounter
	instructors activeCounter
	courses     dashboardCourseRepository
	enrollments dashboardEnrollmentRepository
	cache       *CacheService
	logger      *zap.Logger
	cfg         DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:    params.Students,
		instructors: params.Instructors,
		courses:     params.Courses,
		enrollments: params.Enrollments,
		cache:       params.Cache,
		logger:      logger,
		cfg:         cfg,
	}
}

// Home returns the landing page counts and the newest active courses.
func (s *DashboardService) Home(ctx context.Context) (*dto.HomeSummary, bool, error) {
	var cached dto.HomeSummary
	if s.tryCache(ctx, cacheKeyHome, &cached) {
		return &cached, true, nil
	}

	students, courses, instructors, err := s.counts(ctx)
	if err != nil {
		return nil, false, err
	}
	recent, err := s.courses.Recent(ctx, recentCoursesLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent courses")
	}

	summary := &dto.HomeSummary{
		TotalStudents:    students,
		TotalCourses:     courses,
		TotalInstructors: instructors,
		RecentCourses:    make([]models.CourseView, 0, len(recent)),
	}
	for _, course := range recent {
		summary.RecentCourses = append(summary.RecentCourses, course.View())
	}
	s.persistCache(ctx, cacheKeyHome, summary)
	return summary, false, nil
}

// Admin returns the aggregate counts for administrators.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	var cached dto.AdminDashboardResponse
	if s.tryCache(ctx, cacheKeyAdminDashboard, &cached) {
		return &cached, true, nil
	}

	students, courses, instructors, err := s.counts(ctx)
	if err != nil {
		return nil, false, err
	}

	byStatus := make(map[models.EnrollmentStatus]int, 3)
	total := 0
	for _, status := range []models.EnrollmentStatus{models.EnrollmentStatusActive, models.EnrollmentStatusCompleted, models.EnrollmentStatusCancelled} {
		n, err := s.enrollments.CountByStatus(ctx, status)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		byStatus[status] = n
		total += n
	}

	summary := &dto.AdminDashboardResponse{
		TotalStudents:       students,
		TotalCourses:        courses,
		TotalInstructors:    instructors,
		EnrollmentsByStatus: byStatus,
	}
	if total > 0 {
		summary.ActiveEnrollmentRate = round2(float64(byStatus[models.EnrollmentStatusActive]) / float64(total) * 100)
	}
	s.persistCache(ctx, cacheKeyAdminDashboard, summary)
	return summary, false, nil
}

// Teacher lists every active course with its seat usage.
func (s *DashboardService) Teacher(ctx context.Context) (*dto.TeacherDashboardResponse, error) {
	courses, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	resp := &dto.TeacherDashboardResponse{Courses: make([]dto.CourseLoad, 0, len(courses))}
	for _, course := range courses {
		load := dto.CourseLoad{
			Course:     course.View(),
			SeatsTaken: course.EnrolledCount,
			SeatsLeft:  course.MaxStudents - course.EnrolledCount,
		}
		if load.SeatsLeft < 0 {
			load.SeatsLeft = 0
		}
		if course.MaxStudents > 0 {
			load.Occupancy = round2(float64(course.EnrolledCount) / float64(course.MaxStudents) * 100)
		}
		resp.Courses = append(resp.Courses, load)
	}
	return resp, nil
}

// Student returns the caller's enrollments of every status.
func (s *DashboardService) Student(ctx context.Context, identity *models.Identity) (*dto.StudentDashboardResponse, error) {
	if identity == nil || identity.Profile == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile required")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, identity.Profile.ID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	resp := &dto.StudentDashboardResponse{Profile: *identity.Profile, Enrollments: enrollments}
	if resp.Enrollments == nil {
		resp.Enrollments = []models.EnrollmentDetail{}
	}
	for _, e := range enrollments {
		if e.Status == models.EnrollmentStatusActive {
			resp.ActiveCount++
		}
	}
	return resp, nil
}

// Invalidate drops the cached aggregates after a write that changes them.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, cacheKeyHome, cacheKeyAdminDashboard)
}

func (s *DashboardService) counts(ctx context.Context) (students, courses, instructors int, err error) {
	if students, err = s.students.CountActive(ctx); err != nil {
		return 0, 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if courses, err = s.courses.CountActive(ctx); err != nil {
		return 0, 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}
	if instructors, err = s.instructors.CountActive(ctx); err != nil {
		return 0, 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instructors")
	}
	return students, courses, instructors, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if !s.cache.Enabled() {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("dashboard cache lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *DashboardService) persistCache(ctx context.Context, key string, payload interface{}) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache persist failed", zap.String("key", key), zap.Error(err))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
