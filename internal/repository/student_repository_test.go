package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

var studentRowColumns = []string{"id", "user_id", "first_name", "last_name", "email", "birth_date", "faculty", "role", "phone", "avatar", "bio", "active", "created_at", "updated_at"}

func TestListStudentsClampsPage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students s LEFT JOIN users u ON u.id = s.user_id WHERE s.active = \$1 AND s.faculty = \$2`).
		WithArgs(true, "SE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	now := time.Now()
	mock.ExpectQuery(`ORDER BY last_name ASC, first_name ASC, s.id ASC LIMIT 10 OFFSET 20`).
		WithArgs(true, "SE").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).
			AddRow("s1", nil, "Дмитрий", "Смирнов", "d@x.com", nil, "SE", "STUDENT", "", "", "", true, now, now))

	students, pagination, err := repo.List(context.Background(), models.StudentFilter{Faculty: models.FacultySE, Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 3, pagination.Page)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStudentsSearchEscapesWildcards(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) .* ILIKE \$2 OR .* ILIKE \$3 OR .* ILIKE \$4`).
		WithArgs(true, `%50\%%`, `%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`LIMIT 10 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	_, pagination, err := repo.List(context.Background(), models.StudentFilter{Search: " 50% ", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindStudentByUserIDProxiesAccountName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(`COALESCE\(u.first_name, s.first_name\) AS first_name.* WHERE s.user_id = \$1 LIMIT 1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).
			AddRow("s1", "u1", "Анна", "Иванова", "a@x.com", nil, "CS", "ADMIN", "", "", "", true, now, now))

	student, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Анна Иванова", student.FullName())
	assert.Equal(t, models.RoleAdmin, student.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStudentMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`DELETE FROM students WHERE id = \$1`).WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "s1"), sql.ErrNoRows)
}
