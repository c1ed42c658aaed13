package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fefu-lab-api/internal/dto"
	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/middleware"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/service"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Form       map[string]string      `json:"form"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func newContext(req *http.Request, identity *models.Identity, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Params = params
	if identity != nil {
		c.Set(middleware.ContextIdentityKey, identity)
	}
	return c, rec
}

// serve runs handler and commits the header the way the engine does once the
// chain returns, so bodiless redirects still reach the recorder.
func serve(c *gin.Context, handler gin.HandlerFunc) {
	handler(c)
	c.Writer.WriteHeaderNow()
}

func studentIdentity() *models.Identity {
	return &models.Identity{
		User:    models.User{ID: "u1", Email: "anna@fefu.test"},
		Profile: &models.Student{ID: "s1", Role: models.RoleStudent},
	}
}

type fakeAuth struct {
	loginErr error
	lastNext string
	logouts  int
}

func (f *fakeAuth) Login(ctx context.Context, form *forms.LoginForm, meta service.RequestMeta) (*models.LoginResult, error) {
	f.lastNext = form.Next
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResult{Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuth) Register(ctx context.Context, form *forms.RegistrationForm, meta service.RequestMeta) (*models.LoginResult, error) {
	if form.Password != form.PasswordConfirm {
		errs := forms.Errors{}
		errs.Add("password_confirm", "Пароли не совпадают.")
		return nil, errs.Err()
	}
	return &models.LoginResult{Token: "tok-new"}, nil
}

func (f *fakeAuth) Logout(ctx context.Context, identity *models.Identity, meta service.RequestMeta) error {
	f.logouts++
	return nil
}

func TestLoginSetsCookieAndRedirectsToNext(t *testing.T) {
	auth := &fakeAuth{}
	h := NewAuthHandler(auth, CookieConfig{Name: "sessionid", Lifetime: time.Hour}, nil)

	c, rec := newContext(formRequest(http.MethodPost, "/login/?next=%2Fcourses%2F", url.Values{
		"username": {"anna@fefu.test"},
		"password": {"secret-pass"},
	}), nil)
	serve(c, h.Login)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/courses/", rec.Header().Get("Location"))
	cookie := rec.Result().Cookies()
	require.Len(t, cookie, 1)
	assert.Equal(t, "sessionid", cookie[0].Name)
	assert.Equal(t, "tok-1", cookie[0].Value)
	assert.True(t, cookie[0].HttpOnly)
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{}, CookieConfig{}, nil)

	c, rec := newContext(formRequest(http.MethodPost, "/login/", url.Values{
		"username": {"anna"},
		"password": {"secret-pass"},
		"next":     {"//evil.example/"},
	}), nil)
	serve(c, h.Login)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/", rec.Header().Get("Location"))
}

func TestLoginFailureEchoesIdentifierOnly(t *testing.T) {
	failed := appErrors.Clone(appErrors.ErrInvalidCredentials, "Неверный логин или пароль.")
	h := NewAuthHandler(&fakeAuth{loginErr: failed}, CookieConfig{}, nil)

	c, rec := newContext(formRequest(http.MethodPost, "/login/", url.Values{
		"username": {"anna"},
		"password": {"wrong"},
	}), nil)
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decode(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
	assert.Equal(t, "anna", envelope.Form["username"])
	_, hasPassword := envelope.Form["password"]
	assert.False(t, hasPassword)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRegisterMismatchKeepsInputWithoutPasswords(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{}, CookieConfig{}, []models.Role{models.RoleStudent})

	c, rec := newContext(formRequest(http.MethodPost, "/register/", url.Values{
		"email":            {"new@fefu.test"},
		"first_name":       {"Анна"},
		"password":         {"one-password"},
		"password_confirm": {"another-one"},
	}), nil)
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decode(t, rec)
	assert.Equal(t, []string{"Пароли не совпадают."}, envelope.Error.Fields["password_confirm"])
	assert.Equal(t, "new@fefu.test", envelope.Form["email"])
	for key := range envelope.Form {
		assert.NotContains(t, key, "password")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	auth := &fakeAuth{}
	h := NewAuthHandler(auth, CookieConfig{Name: "sessionid"}, nil)

	c, rec := newContext(httptest.NewRequest(http.MethodPost, "/logout/", nil), studentIdentity())
	serve(c, h.Logout)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 1, auth.logouts)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.True(t, rec.Result().Cookies()[0].MaxAge < 0)
}

type fakeHome struct{ hit bool }

func (f *fakeHome) Home(ctx context.Context) (*dto.HomeSummary, bool, error) {
	return &dto.HomeSummary{TotalStudents: 4, TotalCourses: 3, TotalInstructors: 2}, f.hit, nil
}

func TestHomeReportsCacheHit(t *testing.T) {
	h := NewHomeHandler(&fakeHome{hit: true})

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	c.Set("response_meta", map[string]interface{}{})
	h.Home(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decode(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	var summary dto.HomeSummary
	require.NoError(t, json.Unmarshal(envelope.Data, &summary))
	assert.Equal(t, 4, summary.TotalStudents)
}

type fakeCourses struct {
	lastFilter models.CourseFilter
	createErr  error
}

func (f *fakeCourses) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseView, models.Pagination, error) {
	f.lastFilter = filter
	return []models.CourseView{{Course: models.Course{Title: "Go", Slug: "go"}}}, models.NewPagination(filter.Page, 9, 10), nil
}

func (f *fakeCourses) Detail(ctx context.Context, courseSlug string) (*models.CourseDetail, error) {
	return nil, appErrors.ErrNotFound
}

func (f *fakeCourses) Create(ctx context.Context, form *forms.CourseForm) (*models.Course, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Course{Slug: "osnovy-python"}, nil
}

func (f *fakeCourses) Update(ctx context.Context, courseSlug string, form *forms.CourseForm) (*models.Course, error) {
	return &models.Course{Slug: courseSlug}, nil
}

func (f *fakeCourses) Delete(ctx context.Context, courseSlug string) error { return nil }

type fakeEnrollments struct {
	enrollErr error
	cancelled string
}

func (f *fakeEnrollments) Form(ctx context.Context, identity *models.Identity, courseSlug string) (*service.EnrollmentPage, error) {
	return &service.EnrollmentPage{}, nil
}

func (f *fakeEnrollments) Enroll(ctx context.Context, identity *models.Identity, courseSlug string, form *forms.EnrollmentForm, meta service.RequestMeta) (*models.Enrollment, error) {
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	return &models.Enrollment{ID: "e1"}, nil
}

func (f *fakeEnrollments) Cancel(ctx context.Context, identity *models.Identity, id string, meta service.RequestMeta) (*models.EnrollmentDetail, error) {
	f.cancelled = id
	return &models.EnrollmentDetail{CourseSlug: "go"}, nil
}

func (f *fakeEnrollments) Complete(ctx context.Context, identity *models.Identity, id string, meta service.RequestMeta) (*models.EnrollmentDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrConflict, "Запись уже не активна.")
}

func TestCourseListPassesFilters(t *testing.T) {
	courses := &fakeCourses{}
	h := NewCourseHandler(courses, &fakeEnrollments{})

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/courses/?q=%20python%20&level=beginner&page=2", nil), nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "python", courses.lastFilter.Search)
	assert.Equal(t, models.LevelBeginner, courses.lastFilter.Level)
	assert.Equal(t, 2, courses.lastFilter.Page)
	envelope := decode(t, rec)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 2, envelope.Pagination.TotalPages)
}

func TestCourseListIgnoresUnknownLevel(t *testing.T) {
	courses := &fakeCourses{}
	h := NewCourseHandler(courses, &fakeEnrollments{})

	c, _ := newContext(httptest.NewRequest(http.MethodGet, "/courses/?level=expert&page=abc", nil), nil)
	h.List(c)

	assert.Equal(t, models.CourseLevel(""), courses.lastFilter.Level)
	assert.Equal(t, 1, courses.lastFilter.Page)
}

func TestCourseDetailMissingIs404(t *testing.T) {
	h := NewCourseHandler(&fakeCourses{}, &fakeEnrollments{})

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/course/missing/", nil), nil, gin.Param{Key: "slug", Value: "missing"})
	h.Detail(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrollRedirectsToCourse(t *testing.T) {
	h := NewCourseHandler(&fakeCourses{}, &fakeEnrollments{})

	c, rec := newContext(formRequest(http.MethodPost, "/course/go/enroll/", url.Values{}), studentIdentity(), gin.Param{Key: "slug", Value: "go"})
	serve(c, h.Enroll)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/course/go/", rec.Header().Get("Location"))
}

func TestEnrollFullCourseIsFormError(t *testing.T) {
	errs := forms.Errors{}
	errs.AddForm("Курс уже заполнен.")
	h := NewCourseHandler(&fakeCourses{}, &fakeEnrollments{enrollErr: errs.Err()})

	c, rec := newContext(formRequest(http.MethodPost, "/course/go/enroll/", url.Values{}), studentIdentity(), gin.Param{Key: "slug", Value: "go"})
	h.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decode(t, rec)
	assert.Equal(t, []string{"Курс уже заполнен."}, envelope.Error.Fields[appErrors.FormField])
}

func TestEnrollmentTransitions(t *testing.T) {
	enrollments := &fakeEnrollments{}
	h := NewCourseHandler(&fakeCourses{}, enrollments)

	c, rec := newContext(httptest.NewRequest(http.MethodPost, "/enrollments/e1/cancel/", nil), studentIdentity(), gin.Param{Key: "id", Value: "e1"})
	serve(c, h.CancelEnrollment)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/course/go/", rec.Header().Get("Location"))
	assert.Equal(t, "e1", enrollments.cancelled)

	c, rec = newContext(httptest.NewRequest(http.MethodPost, "/enrollments/e1/complete/", nil), studentIdentity(), gin.Param{Key: "id", Value: "e1"})
	h.CompleteEnrollment(c)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCourseCreateRedirectsToNewSlug(t *testing.T) {
	h := NewCourseHandler(&fakeCourses{}, &fakeEnrollments{})

	c, rec := newContext(formRequest(http.MethodPost, "/manage/courses/", url.Values{"title": {"Основы Python"}}), nil)
	serve(c, h.Create)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/course/osnovy-python/", rec.Header().Get("Location"))
}

type fakeFeedback struct{ err error }

func (f *fakeFeedback) Submit(ctx context.Context, form *forms.FeedbackForm) (*service.FeedbackReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.FeedbackReceipt{ID: "job-1", Name: form.Name, Message: "Спасибо, " + form.Name + "!"}, nil
}

func TestFeedbackThankYou(t *testing.T) {
	h := NewFeedbackHandler(&fakeFeedback{})

	c, rec := newContext(formRequest(http.MethodPost, "/feedback/", url.Values{"name": {"Анна"}}), nil)
	h.Submit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var receipt service.FeedbackReceipt
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &receipt))
	assert.Equal(t, "Спасибо, Анна!", receipt.Message)
}

func TestFeedbackValidationEchoesInput(t *testing.T) {
	h := NewFeedbackHandler(&fakeFeedback{err: appErrors.FieldError("message", "Сообщение слишком короткое.")})

	c, rec := newContext(formRequest(http.MethodPost, "/feedback/", url.Values{"name": {"Анна"}, "message": {"hi"}}), nil)
	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decode(t, rec)
	assert.Equal(t, "hi", envelope.Form["message"])
}

type fakeExporter struct{ format service.ExportFormat }

func (f *fakeExporter) Roster(ctx context.Context, courseSlug string, format service.ExportFormat) (*service.ExportFile, error) {
	f.format = format
	if courseSlug == "missing" {
		return nil, appErrors.ErrNotFound
	}
	return &service.ExportFile{Filename: courseSlug + "-roster.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("Студент\n")}, nil
}

func TestRosterExportHeaders(t *testing.T) {
	exporter := &fakeExporter{}
	h := NewDashboardHandler(nil, exporter)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/dashboard/admin/courses/go/roster.csv", nil), nil, gin.Param{Key: "slug", Value: "go"})
	h.RosterCSV(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatCSV, exporter.format)
	assert.Equal(t, `attachment; filename="go-roster.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	c, rec = newContext(httptest.NewRequest(http.MethodGet, "/dashboard/admin/courses/missing/roster.pdf", nil), nil, gin.Param{Key: "slug", Value: "missing"})
	h.RosterPDF(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeAvatars struct{ path string }

func (f *fakeAvatars) OpenAvatar(token string) (*os.File, error) {
	if token != "good" {
		return nil, appErrors.ErrNotFound
	}
	return os.Open(f.path)
}

func TestMediaServesSignedAvatar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600))
	h := NewMediaHandler(&fakeAvatars{path: path})

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/media/avatars/good", nil), nil, gin.Param{Key: "token", Value: "good"})
	h.Avatar(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	c, rec = newContext(httptest.NewRequest(http.MethodGet, "/media/avatars/bad", nil), nil, gin.Param{Key: "token", Value: "bad"})
	h.Avatar(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	}, nil)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/ready", nil), nil)
	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "up", body.Checks["postgres"])
	assert.Equal(t, "down", body.Checks["redis"])
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"/courses/?page=2":   "/courses/?page=2",
		"":                   "/profile/",
		"https://evil.test/": "/profile/",
		"//evil.test/":       "/profile/",
		`/\evil.test`:        "/profile/",
		"courses/":           "/profile/",
	}
	for next, want := range cases {
		assert.Equal(t, want, safeNext(next, "/profile/"), next)
	}
}
