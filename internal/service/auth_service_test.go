package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

type mockAuthRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	profiles  map[string]*models.Student
	sessions  map[string]*models.Session
	audits    []*models.AuditLog
	createErr error
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:    map[string]*models.User{},
		profiles: map[string]*models.Student{},
		sessions: map[string]*models.Session{},
	}
}

func (m *mockAuthRepo) addUser(t *testing.T, email, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: uuid.NewString(), Username: email, Email: email, PasswordHash: string(hash), FirstName: "Анна", LastName: "Иванова"}
	m.users[user.ID] = user
	if role != "" {
		m.profiles[user.ID] = &models.Student{ID: uuid.NewString(), UserID: &user.ID, Role: role, Faculty: models.FacultySE, Active: true}
	}
	return user
}

func (m *mockAuthRepo) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, identifier) || u.Username == identifier {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (m *mockAuthRepo) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) && u.ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAuthRepo) CreateAccount(ctx context.Context, user *models.User, profile *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = uuid.NewString()
	profile.ID = uuid.NewString()
	profile.UserID = &user.ID
	profile.Active = true
	u := *user
	p := *profile
	m.users[user.ID] = &u
	m.profiles[user.ID] = &p
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLogin = &ts
	}
	return nil
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.ID = uuid.NewString()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *mockAuthRepo) FindSession(ctx context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (m *mockAuthRepo) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.RevokedAt = &revokedAt
	}
	return nil
}

func (m *mockAuthRepo) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if !s.ExpiresAt.After(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, log)
	return nil
}

func (m *mockAuthRepo) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, repo, nil, nil, AuthConfig{
		SessionSecret:   "test-secret",
		SessionLifetime: time.Hour,
		Issuer:          "fefu-lab-test",
	})
}

func TestLoginIssuesResolvableSession(t *testing.T) {
	repo := newMockAuthRepo()
	user := repo.addUser(t, "anna@fefu.test", "secret123", models.RoleStudent)
	svc := newTestAuthService(repo)

	result, err := svc.Login(context.Background(), &forms.LoginForm{Username: "ANNA@fefu.test", Password: "secret123"}, RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.Identity.User.ID)
	require.NotNil(t, result.Identity.Profile)
	assert.Equal(t, models.RoleStudent, result.Identity.Profile.Role)
	assert.NotNil(t, repo.users[user.ID].LastLogin)

	identity, err := svc.ResolveSession(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.User.ID)
	assert.Equal(t, result.Identity.SessionID, identity.SessionID)
	assert.Equal(t, "127.0.0.1", repo.sessions[identity.SessionID].IPAddress)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "anna@fefu.test", "secret123", models.RoleStudent)
	inactive := repo.addUser(t, "old@fefu.test", "secret123", models.RoleStudent)
	off := false
	inactive.Active = &off
	svc := newTestAuthService(repo)

	_, wrongPassword := svc.Login(context.Background(), &forms.LoginForm{Username: "anna@fefu.test", Password: "nope"}, RequestMeta{})
	_, unknownUser := svc.Login(context.Background(), &forms.LoginForm{Username: "ghost@fefu.test", Password: "nope"}, RequestMeta{})
	_, disabled := svc.Login(context.Background(), &forms.LoginForm{Username: "old@fefu.test", Password: "secret123"}, RequestMeta{})

	for _, err := range []error{unknownUser, disabled} {
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
		assert.Equal(t, appErrors.FromError(wrongPassword).Message, appErrors.FromError(err).Message)
		assert.Equal(t, appErrors.FromError(wrongPassword).Fields, appErrors.FromError(err).Fields)
	}
	assert.Equal(t, []string{"Введите правильные email и пароль."}, fieldMessages(t, wrongPassword, appErrors.FormField))
	assert.Empty(t, repo.sessions)
}

func TestLoginRequiresBothCredentials(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepo())

	_, err := svc.Login(context.Background(), &forms.LoginForm{Username: " "}, RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "username")
	assert.Contains(t, appErr.Fields, "password")
}

func TestRegisterCreatesAccountWithProfileAndLogsIn(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo)

	result, err := svc.Register(context.Background(), &forms.RegistrationForm{
		FirstName:       "Анна",
		LastName:        "Иванова",
		Email:           "Anna@Example.com",
		Password:        "secret123",
		PasswordConfirm: "secret123",
		Faculty:         "se",
	}, RequestMeta{})
	require.NoError(t, err)

	require.Len(t, repo.users, 1)
	require.Len(t, repo.profiles, 1)
	user := repo.users[result.Identity.User.ID]
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, user.Email, user.Username)
	require.NotNil(t, user.Active)
	assert.True(t, *user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))

	profile := repo.profiles[user.ID]
	assert.Equal(t, models.RoleStudent, profile.Role)
	assert.Equal(t, models.FacultySE, profile.Faculty)
	require.NotNil(t, result.Identity.Profile)
	assert.Equal(t, profile.ID, result.Identity.Profile.ID)
	assert.Len(t, repo.sessions, 1)
	assert.Equal(t, models.AuditActionRegister, repo.audits[0].Action)
}

func TestRegisterRejectsTakenEmailCaseInsensitively(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "anna@example.com", "secret123", models.RoleStudent)
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), &forms.RegistrationForm{
		FirstName:       "Анна",
		LastName:        "Петрова",
		Email:           "ANNA@example.com",
		Password:        "secret123",
		PasswordConfirm: "secret123",
		Faculty:         "CS",
	}, RequestMeta{})

	assert.Equal(t, []string{"Пользователь с таким email уже существует."}, fieldMessages(t, err, "email"))
	assert.Len(t, repo.users, 1)
	assert.Empty(t, repo.sessions)
}

func TestRegisterMapsUniqueViolationToEmailError(t *testing.T) {
	repo := newMockAuthRepo()
	repo.createErr = &pq.Error{Code: "23505", Constraint: "users_email_lower_key"}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), &forms.RegistrationForm{
		FirstName:       "Анна",
		LastName:        "Иванова",
		Email:           "anna@example.com",
		Password:        "secret123",
		PasswordConfirm: "secret123",
		Faculty:         "CS",
	}, RequestMeta{})

	assert.Equal(t, []string{"Пользователь с таким email уже существует."}, fieldMessages(t, err, "email"))
}

func TestRegisterRejectsAdminRoleAndMismatchedPasswords(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), &forms.RegistrationForm{
		FirstName:       "Анна",
		LastName:        "Иванова",
		Email:           "anna@example.com",
		Password:        "secret123",
		PasswordConfirm: "secret321",
		Faculty:         "CS",
		Role:            "admin",
	}, RequestMeta{})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Contains(t, appErr.Fields, "role")
	assert.Equal(t, []string{"Пароли не совпадают."}, appErr.Fields[appErrors.FormField])
	assert.Empty(t, repo.users)
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "anna@fefu.test", "secret123", models.RoleStudent)
	svc := newTestAuthService(repo)

	result, err := svc.Login(context.Background(), &forms.LoginForm{Username: "anna@fefu.test", Password: "secret123"}, RequestMeta{})
	require.NoError(t, err)
	identity := result.Identity
	require.NoError(t, svc.Logout(context.Background(), &identity, RequestMeta{}))

	_, err = svc.ResolveSession(context.Background(), result.Token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestResolveSessionRejectsTamperedAndExpiredTokens(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "anna@fefu.test", "secret123", models.RoleStudent)
	svc := newTestAuthService(repo)

	result, err := svc.Login(context.Background(), &forms.LoginForm{Username: "anna@fefu.test", Password: "secret123"}, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.ResolveSession(context.Background(), result.Token+"x")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = svc.ResolveSession(context.Background(), result.Token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	purged, err := svc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestAccountWithoutProfileResolvesWithNilProfile(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "root@fefu.test", "secret123", "")
	svc := newTestAuthService(repo)

	result, err := svc.Login(context.Background(), &forms.LoginForm{Username: "root@fefu.test", Password: "secret123"}, RequestMeta{})
	require.NoError(t, err)
	assert.Nil(t, result.Identity.Profile)

	identity, err := svc.ResolveSession(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Nil(t, identity.Profile)
	assert.ErrorIs(t, Authorize(identity, AdminOnly...), ErrNoProfile)
}
