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

var instructorColumns = []string{"id", "first_name", "last_name", "email", "specialization", "degree", "bio", "active", "created_at"}

// InstructorRepository manages persistence for instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs a new repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns instructors ordered by last then first name.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, models.Pagination, error) {
	query := psql.Select().From("instructors")
	if filter.Active != nil {
		query = query.Where(squirrel.Eq{"active": *filter.Active})
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"specialization": pattern},
		})
	}

	var instructors []models.Instructor
	pagination, err := paginate(ctx, r.db, &instructors, query, instructorColumns, []string{"last_name ASC", "first_name ASC"}, filter.Page, filter.PageSize)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, pagination, nil
}

// FindByID returns an instructor by id.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	query, args, err := psql.Select(instructorColumns...).From("instructors").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build instructor query: %w", err)
	}
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find instructor: %w", err)
	}
	return &instructor, nil
}

// Create inserts a new instructor.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	if instructor.CreatedAt.IsZero() {
		instructor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO instructors (id, first_name, last_name, email, specialization, degree, bio, active, created_at)
VALUES (:id, :first_name, :last_name, :email, :specialization, :degree, :bio, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// Update modifies an instructor.
func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	const query = `UPDATE instructors SET first_name = :first_name, last_name = :last_name, email = :email, specialization = :specialization, degree = :degree, bio = :bio, active = :active WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, instructor)
	if err != nil {
		return fmt.Errorf("update instructor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an instructor; their courses keep existing without one.
func (r *InstructorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM instructors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete instructor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAll wipes every instructor. Used by the seed command.
func (r *InstructorRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM instructors`); err != nil {
		return fmt.Errorf("delete instructors: %w", err)
	}
	return nil
}

// CountActive returns the number of active instructors.
func (r *InstructorRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM instructors WHERE active = TRUE`); err != nil {
		return 0, fmt.Errorf("count instructors: %w", err)
	}
	return total, nil
}
