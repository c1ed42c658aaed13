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

// Name and email are read from the linked account when there is one.
var studentColumns = []string{
	"s.id",
	"s.user_id",
	"COALESCE(u.first_name, s.first_name) AS first_name",
	"COALESCE(u.last_name, s.last_name) AS last_name",
	"COALESCE(u.email, s.email, '') AS email",
	"s.birth_date",
	"s.faculty",
	"s.role",
	"s.phone",
	"s.avatar",
	"s.bio",
	"s.active",
	"s.created_at",
	"s.updated_at",
}

// StudentRepository provides database access for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) base() squirrel.SelectBuilder {
	return psql.Select().From("students s").LeftJoin("users u ON u.id = s.user_id")
}

// List returns active students matching the filter, ordered by last then first name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, models.Pagination, error) {
	query := r.base().Where(squirrel.Eq{"s.active": true})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(squirrel.Or{
			squirrel.ILike{"COALESCE(u.first_name, s.first_name)": pattern},
			squirrel.ILike{"COALESCE(u.last_name, s.last_name)": pattern},
			squirrel.ILike{"COALESCE(u.email, s.email, '')": pattern},
		})
	}
	if filter.Faculty != "" {
		query = query.Where(squirrel.Eq{"s.faculty": filter.Faculty})
	}

	var students []models.Student
	pagination, err := paginate(ctx, r.db, &students, query, studentColumns, []string{"last_name ASC", "first_name ASC", "s.id ASC"}, filter.Page, filter.PageSize)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list students: %w", err)
	}
	return students, pagination, nil
}

// FindByID returns a student regardless of the active flag.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return r.findOne(ctx, squirrel.Eq{"s.id": id})
}

// FindByUserID returns the profile linked to an account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	return r.findOne(ctx, squirrel.Eq{"s.user_id": userID})
}

func (r *StudentRepository) findOne(ctx context.Context, where squirrel.Eq) (*models.Student, error) {
	query, args, err := r.base().Columns(studentColumns...).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build student query: %w", err)
	}
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Create inserts a standalone student record without an account.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.Faculty == "" {
		student.Faculty = models.FacultyCS
	}
	if student.Role == "" {
		student.Role = models.RoleStudent
	}

	const query = `INSERT INTO students (id, user_id, first_name, last_name, email, birth_date, faculty, role, phone, avatar, bio, active, created_at, updated_at)
VALUES (:id, :user_id, :first_name, :last_name, NULLIF(:email, ''), :birth_date, :faculty, :role, :phone, :avatar, :bio, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Delete removes the student; enrollments cascade.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAll wipes every student. Used by the seed command.
func (r *StudentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("delete students: %w", err)
	}
	return nil
}

// CountActive returns the number of active students.
func (r *StudentRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students WHERE active = TRUE`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
