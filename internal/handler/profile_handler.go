package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/dto"
	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/middleware"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/service"
	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

const avatarField = "avatar"

type profileService interface {
	Get(ctx context.Context, identity *models.Identity) (*dto.ProfileResponse, error)
	Update(ctx context.Context, identity *models.Identity, form *forms.ProfileForm, avatar *multipart.FileHeader, meta service.RequestMeta) error
}

// ProfileHandler shows and edits the caller's own profile.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Show godoc
// @Summary Own profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile/ [get]
func (h *ProfileHandler) Show(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Edit own profile
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Success 303
// @Failure 400 {object} response.Envelope
// @Router /profile/ [post]
func (h *ProfileHandler) Update(c *gin.Context) {
	var form forms.ProfileForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}

	avatar, err := c.FormFile(avatarField)
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		response.FormError(c, err, form.Values())
		return
	}

	if err := h.service.Update(c.Request.Context(), middleware.CurrentIdentity(c), &form, avatar, requestMeta(c)); err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	response.Redirect(c, "/profile/")
}
