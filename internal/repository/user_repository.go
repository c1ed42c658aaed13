package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, active, last_login, created_at, updated_at`

// UserRepository provides database access for accounts, sessions and the audit trail.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByIdentifier returns the account whose email or username matches identifier.
// An email match beats a username match; among equals the oldest account wins.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) OR username = $1
ORDER BY (LOWER(email) = LOWER($1)) DESC, created_at ASC, id ASC LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, identifier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by identifier: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// EmailTaken reports whether another account already uses email, ignoring case,
// either as its email or as its login name.
func (r *UserRepository) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE (LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($1)))`
	args := []interface{}{email}
	if excludeUserID != "" {
		query = `SELECT EXISTS (SELECT 1 FROM users WHERE (LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($1)) AND id <> $2)`
		args = append(args, excludeUserID)
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return exists, nil
}

// CreateAccount inserts the account and its profile in one transaction.
func (r *UserRepository) CreateAccount(ctx context.Context, user *models.User, profile *models.Student) (err error) {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt, user.UpdatedAt = now, now
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.UserID = &user.ID
	profile.CreatedAt, profile.UpdatedAt = now, now
	profile.Active = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create account: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertUser = `INSERT INTO users (id, username, email, password_hash, first_name, last_name, active, created_at, updated_at)
VALUES (:id, :username, :email, :password_hash, :first_name, :last_name, :active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertUser, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	const insertProfile = `INSERT INTO students (id, user_id, faculty, role, phone, bio, active, created_at, updated_at)
VALUES (:id, :user_id, :faculty, :role, :phone, :bio, :active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertProfile, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create account: %w", err)
	}
	return nil
}

// UpdateProfile saves the account names/email and the profile fields together.
// A login name that mirrors the old email follows it to the new one.
func (r *UserRepository) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (err error) {
	now := time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update profile: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, email = $4,
username = CASE WHEN LOWER(username) = LOWER(email) THEN $4 ELSE username END, updated_at = $5 WHERE id = $1`,
		update.UserID, update.FirstName, update.LastName, update.Email, now); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE students SET phone = $2, bio = $3, faculty = $4, avatar = COALESCE($5, avatar), updated_at = $6 WHERE user_id = $1`,
		update.UserID, update.Phone, update.Bio, update.Faculty, update.Avatar, now)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update profile: %w", err)
	}
	return nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateSession persists a login session.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sessions (id, user_id, expires_at, ip_address, user_agent, created_at) VALUES (:id, :user_id, :expires_at, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindSession returns a session by id.
func (r *UserRepository) FindSession(ctx context.Context, id string) (*models.Session, error) {
	const query = `SELECT id, user_id, expires_at, revoked_at, ip_address, user_agent, created_at FROM sessions WHERE id = $1 LIMIT 1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// RevokeSession marks a session as revoked.
func (r *UserRepository) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before cutoff.
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at) VALUES (:id, :user_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
