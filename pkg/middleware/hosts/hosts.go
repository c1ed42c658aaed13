package hosts

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// New rejects requests whose Host header is not in the allowed list.
// A leading dot matches the domain and all subdomains; "*" allows any host.
func New(allowed []string) gin.HandlerFunc {
	patterns := make([]string, 0, len(allowed))
	allowAll := false
	for _, host := range allowed {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "*" {
			allowAll = true
		}
		if host != "" {
			patterns = append(patterns, host)
		}
	}

	return func(c *gin.Context) {
		if allowAll || Allowed(patterns, c.Request.Host) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "DISALLOWED_HOST",
			"message": "invalid host header",
			"status":  http.StatusBadRequest,
		}})
	}
}

// Allowed reports whether host (optionally with port) matches one of the patterns.
func Allowed(patterns []string, host string) bool {
	host = stripPort(strings.ToLower(host))
	if host == "" {
		return false
	}
	for _, pattern := range patterns {
		pattern = stripPort(pattern)
		if strings.HasPrefix(pattern, ".") {
			if host == pattern[1:] || strings.HasSuffix(host, pattern) {
				return true
			}
			continue
		}
		if host == pattern {
			return true
		}
	}
	return false
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}
		return h
	}
	return host
}
