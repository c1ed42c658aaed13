package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, models.Pagination, error)
	Get(ctx context.Context, id string) (*models.StudentDetail, error)
	Delete(ctx context.Context, id string) error
}

// StudentHandler exposes the student directory.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List active students
// @Tags Students
// @Produce json
// @Param q query string false "Search by name or email"
// @Param faculty query string false "Faculty code"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /students/ [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:  strings.TrimSpace(c.Query("q")),
		Faculty: models.Faculty(strings.ToUpper(strings.TrimSpace(c.Query("faculty")))),
		Page:    queryPage(c),
	}
	if !filter.Faculty.Valid() {
		filter.Faculty = ""
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, &pagination)
}

// Detail godoc
// @Summary Student detail with active enrollments
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/{id}/ [get]
func (h *StudentHandler) Detail(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete removes a student together with their enrollments.
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, "/students/")
}
