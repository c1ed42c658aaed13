package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/pkg/database"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

type authUserRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
	CreateAccount(ctx context.Context, user *models.User, profile *models.Student) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateSession(ctx context.Context, session *models.Session) error
	FindSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type profileFinder interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	SessionSecret     string
	SessionLifetime   time.Duration
	Issuer            string
	RegistrationRoles []models.Role
}

// RequestMeta carries client details recorded with sessions and audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuthService provides registration, login and session resolution.
type AuthService struct {
	repo     authUserRepository
	profiles profileFinder
	metrics  *MetricsService
	logger   *zap.Logger
	config   AuthConfig
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, profiles profileFinder, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SessionLifetime <= 0 {
		config.SessionLifetime = 14 * 24 * time.Hour
	}
	if len(config.RegistrationRoles) == 0 {
		config.RegistrationRoles = []models.Role{models.RoleStudent, models.RoleTeacher}
	}
	return &AuthService{
		repo:     repo,
		profiles: profiles,
		metrics:  metrics,
		logger:   logger,
		config:   config,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SessionLifetime reports how long an issued session stays valid.
func (s *AuthService) SessionLifetime() time.Duration {
	return s.config.SessionLifetime
}

// Authenticate returns the active account matching identifier (email or username)
// whose password verifies. Every rejection yields the same INVALID_CREDENTIALS error.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Spend the same hashing time as a real check.
			_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(password))
			return nil, loginFailed()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, loginFailed()
	}
	if !user.IsActive() {
		return nil, loginFailed()
	}
	return user, nil
}

// Login validates the form, authenticates the caller and opens a session.
func (s *AuthService) Login(ctx context.Context, form *forms.LoginForm, meta RequestMeta) (*models.LoginResult, error) {
	if err := form.Clean(); err != nil {
		return nil, err
	}

	user, err := s.Authenticate(ctx, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidCredentials) {
			s.metrics.RecordLogin(false)
		}
		return nil, err
	}
	s.metrics.RecordLogin(true)
	return s.startSession(ctx, user, meta)
}

// Register creates the account and its profile, then logs the new user in.
func (s *AuthService) Register(ctx context.Context, form *forms.RegistrationForm, meta RequestMeta) (*models.LoginResult, error) {
	if err := form.Clean(ctx, s.repo, s.config.RegistrationRoles); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrValidation.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate registration")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	active := true
	user := &models.User{
		Username:     form.Email,
		Email:        form.Email,
		PasswordHash: string(hash),
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Active:       &active,
	}
	profile := &models.Student{
		Faculty: models.Faculty(form.Faculty),
		Role:    models.Role(form.Role),
	}
	if err := s.repo.CreateAccount(ctx, user, profile); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, forms.EmailTaken()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	s.audit(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionRegister,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  auditValues(map[string]string{"role": string(profile.Role), "faculty": string(profile.Faculty)}),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return s.startSession(ctx, user, meta)
}

// Logout revokes the caller's session. Anonymous callers are a no-op.
func (s *AuthService) Logout(ctx context.Context, identity *models.Identity, meta RequestMeta) error {
	if identity == nil || identity.SessionID == "" {
		return nil
	}
	if err := s.repo.RevokeSession(ctx, identity.SessionID, s.now()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke session")
	}
	s.audit(ctx, &models.AuditLog{
		UserID:     &identity.User.ID,
		Action:     models.AuditActionLogout,
		Resource:   "auth",
		ResourceID: &identity.User.ID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return nil
}

// ResolveSession turns a session token into the caller identity.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.FindSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if !session.Valid(s.now()) || session.UserID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or revoked")
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.IsActive() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account is inactive")
	}

	profile, err := s.findProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.Identity{User: *user, Profile: profile, SessionID: session.ID}, nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge sessions")
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", zap.Int64("count", n))
	}
	return n, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, meta RequestMeta) (*models.LoginResult, error) {
	now := s.now()
	session := &models.Session{
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.SessionLifetime),
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	token, err := s.signToken(user.ID, session.ID, now, session.ExpiresAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.audit(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  auditValues(map[string]string{"session_id": session.ID}),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	profile, err := s.findProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Identity:  models.Identity{User: *user, Profile: profile, SessionID: session.ID},
	}, nil
}

func (s *AuthService) findProfile(ctx context.Context, userID string) (*models.Student, error) {
	if s.profiles == nil {
		return nil, nil
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

func (s *AuthService) signToken(userID, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    s.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SessionSecret))
}

func (s *AuthService) parseToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session token claims")
	}
	return claims, nil
}

func (s *AuthService) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("fefu-lab-dummy-password"), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Warn("failed to prepare dummy password hash", zap.Error(err))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) audit(ctx context.Context, log *models.AuditLog) {
	recordAudit(ctx, s.repo, s.logger, log)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// recordAudit stores an audit entry; failures are logged and otherwise ignored.
func recordAudit(ctx context.Context, writer auditWriter, logger *zap.Logger, log *models.AuditLog) {
	if writer == nil {
		return
	}
	if err := writer.CreateAuditLog(ctx, log); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
	}
}

func auditValues(values map[string]string) []byte {
	payload, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return payload
}

func loginFailed() error {
	failure := appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	failure.Fields = appErrors.FromError(forms.LoginFailed()).Fields
	return failure
}
