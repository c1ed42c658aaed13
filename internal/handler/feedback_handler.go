package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/service"
	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

type feedbackService interface {
	Submit(ctx context.Context, form *forms.FeedbackForm) (*service.FeedbackReceipt, error)
}

// FeedbackHandler serves the contact form.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs FeedbackHandler.
func NewFeedbackHandler(service feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Form returns an empty feedback form.
func (h *FeedbackHandler) Form(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"form": forms.FeedbackForm{}}, nil)
}

// Submit godoc
// @Summary Send feedback
// @Tags Pages
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /feedback/ [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var form forms.FeedbackForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}
	receipt, err := h.service.Submit(c.Request.Context(), &form)
	if err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	response.JSON(c, http.StatusOK, receipt, nil)
}
