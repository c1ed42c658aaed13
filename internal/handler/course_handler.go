package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/middleware"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/service"
	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseView, models.Pagination, error)
	Detail(ctx context.Context, courseSlug string) (*models.CourseDetail, error)
	Create(ctx context.Context, form *forms.CourseForm) (*models.Course, error)
	Update(ctx context.Context, courseSlug string, form *forms.CourseForm) (*models.Course, error)
	Delete(ctx context.Context, courseSlug string) error
}

type enrollmentService interface {
	Form(ctx context.Context, identity *models.Identity, courseSlug string) (*service.EnrollmentPage, error)
	Enroll(ctx context.Context, identity *models.Identity, courseSlug string, form *forms.EnrollmentForm, meta service.RequestMeta) (*models.Enrollment, error)
	Cancel(ctx context.Context, identity *models.Identity, id string, meta service.RequestMeta) (*models.EnrollmentDetail, error)
	Complete(ctx context.Context, identity *models.Identity, id string, meta service.RequestMeta) (*models.EnrollmentDetail, error)
}

// CourseHandler exposes the course catalogue and enrollment.
type CourseHandler struct {
	courses     courseService
	enrollments enrollmentService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService, enrollments enrollmentService) *CourseHandler {
	return &CourseHandler{courses: courses, enrollments: enrollments}
}

// List godoc
// @Summary List active courses
// @Tags Courses
// @Produce json
// @Param q query string false "Search by title or description"
// @Param level query string false "BEGINNER, INTERMEDIATE or ADVANCED"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /courses/ [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		Search: strings.TrimSpace(c.Query("q")),
		Level:  models.CourseLevel(strings.ToUpper(strings.TrimSpace(c.Query("level")))),
		Page:   queryPage(c),
	}
	if !filter.Level.Valid() {
		filter.Level = ""
	}

	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, &pagination)
}

// Detail godoc
// @Summary Course detail with instructor and roster
// @Tags Courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/{slug}/ [get]
func (h *CourseHandler) Detail(c *gin.Context) {
	detail, err := h.courses.Detail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// EnrollForm godoc
// @Summary Enrollment form state
// @Tags Enrollments
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} response.Envelope
// @Router /course/{slug}/enroll/ [get]
func (h *CourseHandler) EnrollForm(c *gin.Context) {
	page, err := h.enrollments.Form(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Enroll godoc
// @Summary Enroll into a course
// @Tags Enrollments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param slug path string true "Course slug"
// @Success 303
// @Failure 400 {object} response.Envelope
// @Router /course/{slug}/enroll/ [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseSlug := c.Param("slug")
	var form forms.EnrollmentForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}

	if _, err := h.enrollments.Enroll(c.Request.Context(), middleware.CurrentIdentity(c), courseSlug, &form, requestMeta(c)); err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	response.Redirect(c, courseURL(courseSlug))
}

// CancelEnrollment moves an enrollment to CANCELLED.
func (h *CourseHandler) CancelEnrollment(c *gin.Context) {
	enrollment, err := h.enrollments.Cancel(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, courseURL(enrollment.CourseSlug))
}

// CompleteEnrollment moves an enrollment to COMPLETED.
func (h *CourseHandler) CompleteEnrollment(c *gin.Context) {
	enrollment, err := h.enrollments.Complete(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, courseURL(enrollment.CourseSlug))
}

// Create godoc
// @Summary Create a course
// @Tags Management
// @Accept x-www-form-urlencoded
// @Success 303
// @Failure 400 {object} response.Envelope
// @Router /manage/courses/ [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var form forms.CourseForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}
	course, err := h.courses.Create(c.Request.Context(), &form)
	if err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	response.Redirect(c, courseURL(course.Slug))
}

// Update edits a course; its slug stays the same.
func (h *CourseHandler) Update(c *gin.Context) {
	var form forms.CourseForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("slug"), &form)
	if err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	response.Redirect(c, courseURL(course.Slug))
}

// Delete removes a course and its enrollments.
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, "/courses/")
}
