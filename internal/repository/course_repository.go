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

var courseColumns = []string{
	"c.id",
	"c.title",
	"c.slug",
	"c.description",
	"c.duration",
	"c.instructor_id",
	"NULLIF(TRIM(i.first_name || ' ' || i.last_name), '') AS instructor_name",
	"c.level",
	"c.max_students",
	"c.price",
	"c.active",
	"(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.status = 'ACTIVE') AS enrolled_count",
	"c.created_at",
	"c.updated_at",
}

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a new repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) base() squirrel.SelectBuilder {
	return psql.Select().From("courses c").LeftJoin("instructors i ON i.id = c.instructor_id")
}

// List returns active courses, newest first.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, models.Pagination, error) {
	query := r.base().Where(squirrel.Eq{"c.active": true})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(squirrel.Or{
			squirrel.ILike{"c.title": pattern},
			squirrel.ILike{"c.description": pattern},
		})
	}
	if filter.Level != "" {
		query = query.Where(squirrel.Eq{"c.level": filter.Level})
	}

	var courses []models.Course
	pagination, err := paginate(ctx, r.db, &courses, query, courseColumns, []string{"c.created_at DESC", "c.id DESC"}, filter.Page, filter.PageSize)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list courses: %w", err)
	}
	return courses, pagination, nil
}

// Recent returns the newest active courses.
func (r *CourseRepository) Recent(ctx context.Context, limit int) ([]models.Course, error) {
	query, args, err := r.base().Columns(courseColumns...).
		Where(squirrel.Eq{"c.active": true}).
		OrderBy("c.created_at DESC", "c.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent courses query: %w", err)
	}
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("recent courses: %w", err)
	}
	return courses, nil
}

// ListActive returns every active course ordered by title.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	query, args, err := r.base().Columns(courseColumns...).
		Where(squirrel.Eq{"c.active": true}).
		OrderBy("c.title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active courses query: %w", err)
	}
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// FindBySlug returns a course regardless of the active flag.
func (r *CourseRepository) FindBySlug(ctx context.Context, slug string) (*models.Course, error) {
	return r.findOne(ctx, squirrel.Eq{"c.slug": slug})
}

// FindByID returns a course regardless of the active flag.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	return r.findOne(ctx, squirrel.Eq{"c.id": id})
}

func (r *CourseRepository) findOne(ctx context.Context, where squirrel.Eq) (*models.Course, error) {
	query, args, err := r.base().Columns(courseColumns...).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course query: %w", err)
	}
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create inserts a course. Slug collisions surface as unique violations.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, title, slug, description, duration, instructor_id, level, max_students, price, active, created_at, updated_at)
VALUES (:id, :title, :slug, :description, :duration, :instructor_id, :level, :max_students, :price, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course. The slug column is never written.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, description = :description, duration = :duration, instructor_id = :instructor_id, level = :level, max_students = :max_students, price = :price, active = :active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a course; enrollments cascade.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAll wipes every course. Used by the seed command.
func (r *CourseRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses`); err != nil {
		return fmt.Errorf("delete courses: %w", err)
	}
	return nil
}

// CountActive returns the number of active courses.
func (r *CourseRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM courses WHERE active = TRUE`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return total, nil
}
