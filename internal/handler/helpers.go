package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/internal/service"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

// bindForm decodes a urlencoded, multipart or JSON body into dst. Field rules
// are checked later by the form's Clean method.
func bindForm(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBind(dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload")
	}
	return nil
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// safeNext accepts only same-site relative paths as a post-login target.
func safeNext(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}

func courseURL(slug string) string {
	return "/course/" + slug + "/"
}
