package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/service"
)

// LoginPath is where anonymous callers are sent by the role gate.
const LoginPath = "/login/"

// RequireRoles gates a route on the caller's profile role. Anonymous callers
// are redirected to the login page with a next parameter; callers without a
// profile or with another role are redirected home.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := service.Authorize(CurrentIdentity(c), roles...)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, service.ErrUnauthenticated):
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
		default:
			c.Redirect(http.StatusFound, "/")
			c.Abort()
		}
	}
}

// RequireLogin only requires an authenticated caller.
func RequireLogin() gin.HandlerFunc {
	return RequireRoles()
}

// LoginURL builds the login redirect for next.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}
