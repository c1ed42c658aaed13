package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

const instructorsPath = "/manage/instructors/"

type instructorService interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, models.Pagination, error)
	Create(ctx context.Context, form *forms.InstructorForm) (*models.Instructor, error)
	Update(ctx context.Context, id string, form *forms.InstructorForm) (*models.Instructor, error)
	Delete(ctx context.Context, id string) error
}

// InstructorHandler manages instructors for administrators.
type InstructorHandler struct {
	service instructorService
}

// NewInstructorHandler constructs InstructorHandler.
func NewInstructorHandler(service instructorService) *InstructorHandler {
	return &InstructorHandler{service: service}
}

// List godoc
// @Summary List instructors
// @Tags Management
// @Produce json
// @Param q query string false "Search by name, email or specialization"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /manage/instructors/ [get]
func (h *InstructorHandler) List(c *gin.Context) {
	filter := models.InstructorFilter{Search: strings.TrimSpace(c.Query("q")), Page: queryPage(c)}
	instructors, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, &pagination)
}

// Create adds an instructor.
func (h *InstructorHandler) Create(c *gin.Context) {
	var form forms.InstructorForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}
	if _, err := h.service.Create(c.Request.Context(), &form); err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	response.Redirect(c, instructorsPath)
}

// Update replaces an instructor's fields.
func (h *InstructorHandler) Update(c *gin.Context) {
	var form forms.InstructorForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}
	if _, err := h.service.Update(c.Request.Context(), c.Param("id"), &form); err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	response.Redirect(c, instructorsPath)
}

// Delete removes an instructor; their courses stay without one.
func (h *InstructorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, instructorsPath)
}
