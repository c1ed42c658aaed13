package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fefu-lab-api/internal/models"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
	"github.com/noah-isme/fefu-lab-api/pkg/jobs"
)

// memStore keeps courses, students and enrollments in memory so the
// enrollment rules can be exercised end to end.
type memStore struct {
	mu          sync.Mutex
	courses     map[string]*models.Course
	students    map[string]*models.Student
	instructors map[string]*models.Instructor
	enrollments []*models.Enrollment
	createErr   error
}

func newMemStore() *memStore {
	return &memStore{
		courses:     map[string]*models.Course{},
		students:    map[string]*models.Student{},
		instructors: map[string]*models.Instructor{},
	}
}

func (m *memStore) addCourse(title, slug string, capacity int) *models.Course {
	course := &models.Course{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        slug,
		Duration:    36,
		Level:       models.LevelBeginner,
		MaxStudents: capacity,
		Price:       decimal.NewFromInt(15000),
		Active:      true,
		CreatedAt:   time.Now(),
	}
	m.courses[course.ID] = course
	return course
}

func (m *memStore) addStudent(first, last string) *models.Student {
	student := &models.Student{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(uuid.NewString()[:8]) + "@fefu.test",
		Faculty:   models.FacultyCS,
		Role:      models.RoleStudent,
		Active:    true,
	}
	m.students[student.ID] = student
	return student
}

func (m *memStore) addInstructor(first, last string) *models.Instructor {
	instructor := &models.Instructor{ID: uuid.NewString(), FirstName: first, LastName: last, Active: true}
	m.instructors[instructor.ID] = instructor
	return instructor
}

func (m *memStore) activeCount(courseID string) int {
	n := 0
	for _, e := range m.enrollments {
		if e.CourseID == courseID && e.Status == models.EnrollmentStatusActive {
			n++
		}
	}
	return n
}

func (m *memStore) detail(e *models.Enrollment) models.EnrollmentDetail {
	d := models.EnrollmentDetail{Enrollment: *e}
	if s, ok := m.students[e.StudentID]; ok {
		d.StudentName = s.FullName()
		d.StudentEmail = s.Email
	}
	if c, ok := m.courses[e.CourseID]; ok {
		d.CourseTitle = c.Title
		d.CourseSlug = c.Slug
	}
	return d
}

type mockCourseRepo struct{ *memStore }

func (r mockCourseRepo) FindBySlug(ctx context.Context, slug string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Slug == slug {
			copied := *c
			copied.EnrolledCount = r.activeCount(c.ID)
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, models.Pagination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Course
	for _, c := range r.courses {
		if c.Active {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, models.NewPagination(filter.Page, filter.PageSize, len(out)), nil
}

func (r mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Slug == course.Slug {
			return &pq.Error{Code: "23505", Constraint: "courses_slug_key"}
		}
		if c.Title == course.Title {
			return &pq.Error{Code: "23505", Constraint: "courses_title_key"}
		}
	}
	course.ID = uuid.NewString()
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.courses[course.ID]
	if !ok {
		return sql.ErrNoRows
	}
	copied := *course
	copied.Slug = existing.Slug
	r.courses[course.ID] = &copied
	return nil
}

func (r mockCourseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.courses, id)
	kept := r.enrollments[:0]
	for _, e := range r.enrollments {
		if e.CourseID != id {
			kept = append(kept, e)
		}
	}
	r.enrollments = kept
	return nil
}

type mockStudentRepo struct{ *memStore }

func (r mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (r mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, models.Pagination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Student
	for _, s := range r.students {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, models.NewPagination(filter.Page, filter.PageSize, len(out)), nil
}

func (r mockStudentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.students, id)
	return nil
}

type mockInstructorRepo struct{ *memStore }

func (r mockInstructorRepo) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.instructors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *i
	return &copied, nil
}

type mockEnrollmentRepo struct{ *memStore }

func (r mockEnrollmentRepo) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r mockEnrollmentRepo) CreateWithinCapacity(ctx context.Context, enrollment *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	course, ok := r.courses[enrollment.CourseID]
	if !ok || !course.Active {
		return sql.ErrNoRows
	}
	for _, e := range r.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			return models.ErrDuplicateEnrollment
		}
	}
	if r.activeCount(course.ID) >= course.MaxStudents {
		return models.ErrCourseFull
	}
	enrollment.ID = uuid.NewString()
	enrollment.Status = models.EnrollmentStatusActive
	enrollment.EnrolledAt = time.Now()
	copied := *enrollment
	r.enrollments = append(r.enrollments, &copied)
	return nil
}

func (r mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.ID == id {
			d := r.detail(e)
			return &d, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r mockEnrollmentRepo) UpdateStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.ID == id && e.Status == from {
			e.Status = to
			return nil
		}
	}
	return models.ErrInvalidTransition
}

func (r mockEnrollmentRepo) ListByCourse(ctx context.Context, courseID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EnrollmentDetail
	for _, e := range r.enrollments {
		if e.CourseID == courseID && (status == "" || e.Status == status) {
			out = append(out, r.detail(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (r mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EnrollmentDetail
	for _, e := range r.enrollments {
		if e.StudentID == studentID && (status == "" || e.Status == status) {
			out = append(out, r.detail(e))
		}
	}
	return out, nil
}

type mockAuditWriter struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

type mockDashboard struct{ invalidations int }

func (m *mockDashboard) Invalidate(ctx context.Context) { m.invalidations++ }

type mockCacheRepo struct {
	data map[string][]byte
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{data: map[string][]byte{}}
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type mockQueue struct {
	jobs []jobs.Job
	err  error
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func identityFor(student *models.Student) *models.Identity {
	return &models.Identity{User: models.User{ID: uuid.NewString()}, Profile: student, SessionID: uuid.NewString()}
}

func staffIdentity(role models.Role) *models.Identity {
	profile := &models.Student{ID: uuid.NewString(), Role: role, Active: true}
	return identityFor(profile)
}

// fileHeader builds a multipart file header the way a parsed upload would carry it.
func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func fieldMessages(t *testing.T, err error, field string) []string {
	t.Helper()
	require.Error(t, err)
	return appErrors.FromError(err).Fields[field]
}
