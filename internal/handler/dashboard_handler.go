package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/dto"
	"github.com/noah-isme/fefu-lab-api/internal/middleware"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/service"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error)
	Teacher(ctx context.Context) (*dto.TeacherDashboardResponse, error)
	Student(ctx context.Context, identity *models.Identity) (*dto.StudentDashboardResponse, error)
}

type rosterExporter interface {
	Roster(ctx context.Context, courseSlug string, format service.ExportFormat) (*service.ExportFile, error)
}

// DashboardHandler serves the role dashboards and roster exports.
type DashboardHandler struct {
	service dashboardService
	exports rosterExporter
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, exports rosterExporter) *DashboardHandler {
	return &DashboardHandler{service: service, exports: exports}
}

// Student godoc
// @Summary Student dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/student/ [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	resp, err := h.service.Student(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Teacher godoc
// @Summary Teacher dashboard with seat usage
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/teacher/ [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	resp, err := h.service.Teacher(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Admin godoc
// @Summary Admin dashboard summary
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin/ [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	summary, cacheHit, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// RosterCSV streams the roster of a course as CSV.
func (h *DashboardHandler) RosterCSV(c *gin.Context) {
	h.roster(c, service.ExportFormatCSV)
}

// RosterPDF streams the roster of a course as PDF.
func (h *DashboardHandler) RosterPDF(c *gin.Context) {
	h.roster(c, service.ExportFormatPDF)
}

func (h *DashboardHandler) roster(c *gin.Context, format service.ExportFormat) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	file, err := h.exports.Roster(c.Request.Context(), c.Param("slug"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
