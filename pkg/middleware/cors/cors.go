package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// New returns a CORS middleware honoring the trusted origin list.
// Entries may use a leading wildcard host, e.g. "https://*.example.com".
// Cross-origin mutating requests from untrusted origins are rejected.
func New(trustedOrigins []string) gin.HandlerFunc {
	matcher := newOriginMatcher(trustedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		trusted := origin == "" || matcher.match(origin) || sameOrigin(c.Request, origin)

		c.Writer.Header().Add("Vary", "Origin")
		if origin != "" && trusted {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Max-Age", "600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if !trusted && !safeMethod(c.Request.Method) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "origin not trusted",
				"status":  http.StatusForbidden,
			}})
			return
		}

		c.Next()
	}
}

type originMatcher struct {
	exact    map[string]struct{}
	suffixes []wildcard
}

type wildcard struct {
	scheme string
	suffix string
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.ToLower(strings.TrimRight(origin, "/"))
		if scheme, host, ok := strings.Cut(origin, "://*."); ok {
			m.suffixes = append(m.suffixes, wildcard{scheme: scheme + "://", suffix: "." + host})
			continue
		}
		m.exact[origin] = struct{}{}
	}
	return m
}

func (m originMatcher) match(origin string) bool {
	origin = strings.ToLower(strings.TrimRight(origin, "/"))
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, w := range m.suffixes {
		if strings.HasPrefix(origin, w.scheme) && strings.HasSuffix(origin, w.suffix) {
			return true
		}
	}
	return false
}

func sameOrigin(r *http.Request, origin string) bool {
	_, host, ok := strings.Cut(origin, "://")
	return ok && strings.EqualFold(host, r.Host)
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
