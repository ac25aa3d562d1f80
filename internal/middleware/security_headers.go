package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds security headers to every response.
// scriptURL is the datastar bundle; its origin is allowed as a script source.
func SecurityHeadersMiddleware(scriptURL string) gin.HandlerFunc {
	csp := contentSecurityPolicy(scriptURL)

	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=()")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Header("Content-Security-Policy", csp)

		// Page events and API answers are per session and must not be cached
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/pages/") || strings.HasPrefix(path, "/consent/") {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
			c.Header("Pragma", "no-cache")
		}

		c.Next()
	}
}

// contentSecurityPolicy builds the policy of the site. datastar evaluates
// data-* expressions, which needs 'unsafe-eval'.
func contentSecurityPolicy(scriptURL string) string {
	scriptSrc := []string{"'self'", "'unsafe-eval'"}
	if u, err := url.Parse(scriptURL); err == nil && u.Scheme != "" && u.Host != "" {
		scriptSrc = append(scriptSrc, u.Scheme+"://"+u.Host)
	}

	directives := []string{
		"default-src 'self'",
		"script-src " + strings.Join(scriptSrc, " "),
		// datastar toggles inline styles and executes redirect scripts it receives
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}
