package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

var enrollmentColumns = []string{
	"e.id",
	"e.student_id",
	"e.course_id",
	"e.status",
	"e.enrolled_at",
	"TRIM(COALESCE(u.first_name, s.first_name) || ' ' || COALESCE(u.last_name, s.last_name)) AS student_name",
	"COALESCE(u.email, s.email, '') AS student_email",
	"c.title AS course_title",
	"c.slug AS course_slug",
}

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) base() squirrel.SelectBuilder {
	return psql.Select(enrollmentColumns...).
		From("enrollments e").
		Join("students s ON s.id = e.student_id").
		LeftJoin("users u ON u.id = s.user_id").
		Join("courses c ON c.id = e.course_id")
}

// Exists reports whether the pair has an enrollment of any status.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// CreateWithinCapacity inserts an ACTIVE enrollment after re-checking the
// duplicate and capacity rules while holding a row lock on the course.
// Concurrent enrollments into the same course are serialised by that lock.
func (r *EnrollmentRepository) CreateWithinCapacity(ctx context.Context, enrollment *models.Enrollment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	if err = tx.GetContext(ctx, &capacity, `SELECT max_students FROM courses WHERE id = $1 AND active = TRUE FOR UPDATE`, enrollment.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("lock course: %w", err)
	}

	var exists bool
	if err = tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`, enrollment.StudentID, enrollment.CourseID); err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if exists {
		err = models.ErrDuplicateEnrollment
		return err
	}

	var active int
	if err = tx.GetContext(ctx, &active, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = 'ACTIVE'`, enrollment.CourseID); err != nil {
		return fmt.Errorf("count enrollments: %w", err)
	}
	if active >= capacity {
		err = models.ErrCourseFull
		return err
	}

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	enrollment.Status = models.EnrollmentStatusActive

	const insert = `INSERT INTO enrollments (id, student_id, course_id, status, enrolled_at) VALUES (:id, :student_id, :course_id, :status, :enrolled_at)`
	if _, err = tx.NamedExecContext(ctx, insert, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment with student and course info.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	query, args, err := r.base().Where(squirrel.Eq{"e.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build enrollment query: %w", err)
	}
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// UpdateStatus moves an enrollment from one status to another.
// It returns models.ErrInvalidTransition when the row is no longer in from.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE enrollments SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

// ListByStudent returns the student's enrollments, newest first. An empty status lists all.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
	return r.list(ctx, squirrel.Eq{"e.student_id": studentID}, status, "e.enrolled_at DESC")
}

// ListByCourse returns the course roster ordered by student name.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
	return r.list(ctx, squirrel.Eq{"e.course_id": courseID}, status, "student_name ASC")
}

func (r *EnrollmentRepository) list(ctx context.Context, where squirrel.Eq, status models.EnrollmentStatus, orderBy string) ([]models.EnrollmentDetail, error) {
	builder := r.base().Where(where)
	if status != "" {
		builder = builder.Where(squirrel.Eq{"e.status": status})
	}
	query, args, err := builder.OrderBy(orderBy, "e.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build enrollment list: %w", err)
	}
	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return details, nil
}

// Create inserts an enrollment with the given status without capacity checks.
// Only the seed command uses it.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const insert = `INSERT INTO enrollments (id, student_id, course_id, status, enrolled_at) VALUES (:id, :student_id, :course_id, :status, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, insert, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// CountByStatus returns the number of enrollments in status.
func (r *EnrollmentRepository) CountByStatus(ctx context.Context, status models.EnrollmentStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM enrollments WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return total, nil
}
