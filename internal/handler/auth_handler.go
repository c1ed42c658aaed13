package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/dto"
	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/middleware"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/service"
	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

const (
	loginRedirect  = "/profile/"
	logoutRedirect = "/"
)

type authService interface {
	Login(ctx context.Context, form *forms.LoginForm, meta service.RequestMeta) (*models.LoginResult, error)
	Register(ctx context.Context, form *forms.RegistrationForm, meta service.RequestMeta) (*models.LoginResult, error)
	Logout(ctx context.Context, identity *models.Identity, meta service.RequestMeta) error
}

// CookieConfig shapes the session cookie.
type CookieConfig struct {
	Name     string
	Secure   bool
	Lifetime time.Duration
}

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	service           authService
	cookie            CookieConfig
	registrationRoles []models.Role
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieConfig, registrationRoles []models.Role) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "sessionid"
	}
	return &AuthHandler{service: svc, cookie: cookie, registrationRoles: registrationRoles}
}

// RegisterForm godoc
// @Summary Registration form
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /register/ [get]
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	roles := make([]dto.Choice, 0, len(h.registrationRoles))
	for _, role := range h.registrationRoles {
		roles = append(roles, dto.Choice{Value: string(role), Label: role.Label()})
	}
	response.JSON(c, http.StatusOK, gin.H{
		"form":      forms.RegistrationForm{Role: string(models.RoleStudent)},
		"faculties": dto.FacultyChoices(),
		"roles":     roles,
	}, nil)
}

// Register godoc
// @Summary Create an account and its profile
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 303
// @Failure 400 {object} response.Envelope
// @Router /register/ [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var form forms.RegistrationForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}

	result, err := h.service.Register(c.Request.Context(), &form, requestMeta(c))
	if err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	h.setSessionCookie(c, result.Token)
	response.Redirect(c, loginRedirect)
}

// LoginForm godoc
// @Summary Login form
// @Tags Authentication
// @Produce json
// @Param next query string false "Where to go after login"
// @Success 200 {object} response.Envelope
// @Router /login/ [get]
func (h *AuthHandler) LoginForm(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"form": forms.LoginForm{Next: safeNext(c.Query("next"), "")}}, nil)
}

// Login godoc
// @Summary Authenticate by email or username
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 303
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var form forms.LoginForm
	if err := bindForm(c, &form); err != nil {
		response.FormError(c, err, nil)
		return
	}
	if form.Next == "" {
		form.Next = c.Query("next")
	}

	result, err := h.service.Login(c.Request.Context(), &form, requestMeta(c))
	if err != nil {
		response.FormError(c, err, form.Values())
		return
	}
	h.setSessionCookie(c, result.Token)
	response.Redirect(c, safeNext(form.Next, loginRedirect))
}

// Logout godoc
// @Summary Revoke the current session
// @Tags Authentication
// @Success 303
// @Router /logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.CurrentIdentity(c), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	h.clearSessionCookie(c)
	response.Redirect(c, logoutRedirect)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.Lifetime.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
