package forms

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fefu-lab-api/internal/models"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

func TestNewValidatorRegistersCustomRules(t *testing.T) {
	v, trans, err := newValidator()
	require.NoError(t, err)

	input := struct {
		Nick string `form:"nick" validate:"trimmin=3"`
	}{Nick: "  ab  "}
	err = v.Struct(input)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "nick", verrs[0].Field())
	assert.Equal(t, "Минимум 3 символа", verrs[0].Translate(trans))
}

type emailCheckerStub struct {
	taken   map[string]string
	err     error
	queried []string
}

func (s *emailCheckerStub) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	s.queried = append(s.queried, email)
	if s.err != nil {
		return false, s.err
	}
	owner, ok := s.taken[email]
	return ok && owner != excludeUserID, nil
}

type enrollmentCheckerStub struct {
	exists bool
}

func (s enrollmentCheckerStub) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	return s.exists, nil
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	return appErr.Fields
}

var allowedRoles = []models.Role{models.RoleStudent, models.RoleTeacher}

func validRegistration() RegistrationForm {
	return RegistrationForm{
		FirstName:       "Анна",
		LastName:        "Иванова",
		Email:           "a@x.com",
		Password:        "longenough",
		PasswordConfirm: "longenough",
		Faculty:         "cs",
	}
}

func TestFeedbackFormRules(t *testing.T) {
	form := FeedbackForm{Name: "  Я ", Email: "bad", Subject: "", Message: "  коротко  "}
	fields := fieldsOf(t, form.Clean())

	assert.Equal(t, []string{"Имя должно содержать минимум 2 символа"}, fields["name"])
	assert.Equal(t, []string{"Текст сообщения должен быть не короче 10 символов"}, fields["message"])
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "subject")

	ok := FeedbackForm{Name: " Ян ", Email: "yan@fefu.ru", Subject: "Вопрос", Message: "  Когда начнутся занятия?  "}
	require.NoError(t, ok.Clean())
	assert.Equal(t, "Ян", ok.Name)
	assert.Equal(t, "Когда начнутся занятия?", ok.Message)
}

func TestRegistrationPasswordProperty(t *testing.T) {
	cases := []struct {
		p1, p2 string
		accept bool
	}{
		{"12345678", "12345678", true},
		{"пароль12", "пароль12", true},
		{"1234567", "1234567", false},
		{"12345678", "12345679", false},
		{"12345678", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		form := validRegistration()
		form.Password, form.PasswordConfirm = tc.p1, tc.p2
		err := form.Clean(context.Background(), &emailCheckerStub{}, allowedRoles)
		assert.Equal(t, tc.accept, err == nil, "p1=%q p2=%q", tc.p1, tc.p2)
	}
}

func TestRegistrationMismatchIsWholeFormError(t *testing.T) {
	form := validRegistration()
	form.PasswordConfirm = "different1"
	fields := fieldsOf(t, form.Clean(context.Background(), &emailCheckerStub{}, allowedRoles))
	assert.Equal(t, []string{"Пароли не совпадают."}, fields[appErrors.FormField])
}

func TestRegistrationDuplicateEmailIsCaseInsensitive(t *testing.T) {
	checker := &emailCheckerStub{taken: map[string]string{"a@x.com": "user-1"}}
	form := validRegistration()
	form.Email = "  A@X.com "

	fields := fieldsOf(t, form.Clean(context.Background(), checker, allowedRoles))
	assert.Equal(t, []string{"Пользователь с таким email уже существует."}, fields["email"])
	assert.Equal(t, []string{"a@x.com"}, checker.queried)
}

func TestRegistrationRoleRestrictions(t *testing.T) {
	form := validRegistration()
	form.Role = "admin"
	fields := fieldsOf(t, form.Clean(context.Background(), &emailCheckerStub{}, allowedRoles))
	assert.Contains(t, fields, "role")

	form = validRegistration()
	require.NoError(t, form.Clean(context.Background(), &emailCheckerStub{}, allowedRoles))
	assert.Equal(t, string(models.RoleStudent), form.Role)
	assert.Equal(t, "CS", form.Faculty)
}

func TestRegistrationCheckerFailureIsNotValidation(t *testing.T) {
	form := validRegistration()
	err := form.Clean(context.Background(), &emailCheckerStub{err: errors.New("db down")}, allowedRoles)
	require.Error(t, err)
	assert.NotEqual(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegistrationValuesOmitPasswords(t *testing.T) {
	values := validRegistration().Values()
	assert.NotContains(t, values, "password")
	assert.NotContains(t, values, "password_confirm")
}

func TestProfileFormAllowsOwnEmail(t *testing.T) {
	checker := &emailCheckerStub{taken: map[string]string{"a@x.com": "user-1"}}
	form := ProfileForm{FirstName: "Анна", LastName: "Иванова", Email: "a@x.com", Faculty: "SE", Phone: "+7 900 000-00-00"}
	require.NoError(t, form.Clean(context.Background(), checker, "user-1"))

	form.Email = "a@x.com"
	fields := fieldsOf(t, form.Clean(context.Background(), checker, "user-2"))
	assert.Contains(t, fields, "email")
}

func TestProfileFormPhoneLength(t *testing.T) {
	form := ProfileForm{FirstName: "Анна", LastName: "Иванова", Email: "a@x.com", Faculty: "SE", Phone: strings.Repeat("1", 21)}
	fields := fieldsOf(t, form.Clean(context.Background(), &emailCheckerStub{}, "user-1"))
	assert.Contains(t, fields, "phone")
}

func TestEnrollmentFormRules(t *testing.T) {
	course := models.Course{ID: "c1", MaxStudents: 25, EnrolledCount: 25}
	form := EnrollmentForm{}
	fields := fieldsOf(t, form.Clean(context.Background(), enrollmentCheckerStub{exists: true}, "s1", course))
	assert.Equal(t, []string{
		"Этот студент уже записан на данный курс.",
		"На этом курсе больше нет свободных мест.",
	}, fields[appErrors.FormField])

	course.EnrolledCount = 24
	require.NoError(t, form.Clean(context.Background(), enrollmentCheckerStub{}, "s1", course))
}

func TestEnrollmentRejectedMapsErrors(t *testing.T) {
	fields := fieldsOf(t, EnrollmentRejected(models.ErrCourseFull))
	assert.Equal(t, []string{"На этом курсе больше нет свободных мест."}, fields[appErrors.FormField])

	fields = fieldsOf(t, EnrollmentRejected(errors.New("connection reset")))
	assert.Equal(t, []string{"Не удалось записаться на курс. Попробуйте позже."}, fields[appErrors.FormField])

	assert.NoError(t, EnrollmentRejected(nil))
}

func TestCourseFormDefaultsAndBounds(t *testing.T) {
	form := CourseForm{Title: "Основы Python", Description: "Базовый курс", Duration: 36, Price: "0"}
	in, err := form.Clean()
	require.NoError(t, err)
	assert.Equal(t, models.LevelBeginner, in.Level)
	assert.Equal(t, models.DefaultCourseCapacity, in.MaxStudents)
	assert.True(t, in.Active)
	assert.True(t, in.Price.IsZero())

	over := 101
	form = CourseForm{Title: "X", Description: "", Duration: 0, Level: "expert", MaxStudents: &over, Price: "-1"}
	_, err = form.Clean()
	fields := fieldsOf(t, err)
	for _, key := range []string{"title", "description", "duration", "level", "max_students", "price"} {
		assert.Contains(t, fields, key)
	}
}

func TestInstructorFormDegree(t *testing.T) {
	form := InstructorForm{FirstName: "Иван", LastName: "Петров", Email: "I.Petrov@dvfu.ru", Specialization: "Кибербезопасность", Degree: "phd"}
	inst, err := form.Clean()
	require.NoError(t, err)
	assert.Equal(t, models.DegreePhD, inst.Degree)
	assert.Equal(t, "i.petrov@dvfu.ru", inst.Email)

	form.Degree = "professor"
	_, err = form.Clean()
	assert.Contains(t, fieldsOf(t, err), "degree")
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("avatar", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["avatar"][0]
}

func TestCleanAvatar(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	avatar, err := CleanAvatar(fileHeader(t, "me.png", png), 1024)
	require.NoError(t, err)
	assert.Equal(t, ".png", avatar.Extension)

	_, err = CleanAvatar(fileHeader(t, "me.png", []byte("#!/bin/sh\necho hi\n")), 1024)
	assert.Contains(t, fieldsOf(t, err), "avatar")

	_, err = CleanAvatar(fileHeader(t, "big.png", append(png, make([]byte, 2048)...)), 1024)
	assert.Contains(t, fieldsOf(t, err), "avatar")
}
