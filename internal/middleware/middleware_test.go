package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	tokens map[string]*models.Identity
	seen   []string
}

func (s *stubResolver) ResolveSession(ctx context.Context, token string) (*models.Identity, error) {
	s.seen = append(s.seen, token)
	if identity, ok := s.tokens[token]; ok {
		return identity, nil
	}
	return nil, errors.New("invalid session")
}

type stubAuditWriter struct {
	logs []*models.AuditLog
}

func (s *stubAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func withProfile(role models.Role) *models.Identity {
	return &models.Identity{User: models.User{ID: "u-" + string(role)}, Profile: &models.Student{ID: "p-" + string(role), Role: role}}
}

func newGatedRouter(resolver *stubResolver, gate gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Session(resolver, "sessionid", nil))
	r.GET("/dashboard/admin/", gate, func(c *gin.Context) {
		c.String(http.StatusOK, CurrentIdentity(c).User.ID)
	})
	return r
}

func TestSessionReadsCookieThenBearer(t *testing.T) {
	resolver := &stubResolver{tokens: map[string]*models.Identity{
		"cookie-token": withProfile(models.RoleStudent),
		"header-token": withProfile(models.RoleTeacher),
	}}
	r := newGatedRouter(resolver, RequireLogin())

	req := httptest.NewRequest(http.MethodGet, "/dashboard/admin/", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-STUDENT", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/dashboard/admin/", nil)
	req.Header.Set("Authorization", "bearer header-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u-TEACHER", w.Body.String())
}

func TestRequireRolesRedirects(t *testing.T) {
	resolver := &stubResolver{tokens: map[string]*models.Identity{
		"admin":     withProfile(models.RoleAdmin),
		"student":   withProfile(models.RoleStudent),
		"noprofile": {User: models.User{ID: "root"}},
	}}
	r := newGatedRouter(resolver, RequireRoles(service.AdminOnly...))

	cases := []struct {
		name     string
		token    string
		status   int
		location string
	}{
		{name: "anonymous", status: http.StatusFound, location: "/login/?next=%2Fdashboard%2Fadmin%2F%3Ftab%3D1"},
		{name: "invalid token", token: "stale", status: http.StatusFound, location: "/login/?next=%2Fdashboard%2Fadmin%2F%3Ftab%3D1"},
		{name: "wrong role", token: "student", status: http.StatusFound, location: "/"},
		{name: "no profile", token: "noprofile", status: http.StatusFound, location: "/"},
		{name: "admin", token: "admin", status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard/admin/?tab=1", nil)
			if tc.token != "" {
				req.AddCookie(&http.Cookie{Name: "sessionid", Value: tc.token})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.status, w.Code)
			if tc.location != "" {
				assert.Equal(t, tc.location, w.Header().Get("Location"))
			}
		})
	}
}

func TestAuditRecordsSuccessfulManagementRequests(t *testing.T) {
	writer := &stubAuditWriter{}
	resolver := &stubResolver{tokens: map[string]*models.Identity{"admin": withProfile(models.RoleAdmin)}}
	r := gin.New()
	r.Use(Session(resolver, "sessionid", nil))
	r.DELETE("/manage/courses/:slug/", Audit(writer, "COURSE_DELETE", "course", nil), func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/courses/")
	})
	r.PUT("/manage/courses/:slug/", Audit(writer, "COURSE_UPDATE", "course", nil), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodDelete, "/manage/courses/osnovy-python/", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "admin"})
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPut, "/manage/courses/osnovy-python/", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, writer.logs, 1)
	log := writer.logs[0]
	assert.Equal(t, "COURSE_DELETE", log.Action)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "osnovy-python", *log.ResourceID)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "u-ADMIN", *log.UserID)
}

func TestResponseMetaCarriesCacheHit(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, "processing_time_ms")
}
