package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/dto"
	"github.com/noah-isme/fefu-lab-api/internal/middleware"
	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

type homeService interface {
	Home(ctx context.Context) (*dto.HomeSummary, bool, error)
}

// HomeHandler serves the landing and about pages.
type HomeHandler struct {
	service homeService
}

// NewHomeHandler constructs the handler.
func NewHomeHandler(service homeService) *HomeHandler {
	return &HomeHandler{service: service}
}

// Home godoc
// @Summary Landing page counts and newest courses
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *HomeHandler) Home(c *gin.Context) {
	summary, cacheHit, err := h.service.Home(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// About returns the static lab description.
func (h *HomeHandler) About(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"title":       "О нас",
		"name":        "FEFU Lab",
		"description": "Учебная лаборатория ДВФУ: курсы по программированию, данным и веб-разработке для студентов всех факультетов.",
	}, nil)
}
