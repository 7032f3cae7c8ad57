package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jmrodillon/portfolio-backend/config"
)

// SecurityHeadersMiddleware adds security-related HTTP headers to all
// responses. These headers help protect against clickjacking, XSS attacks,
// and MIME type sniffing, and keep moderation payloads out of shared caches.
func SecurityHeadersMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// X-Frame-Options: disallow embedding in frames/iframes/objects
		c.Header("X-Frame-Options", "DENY")

		// X-Content-Type-Options: force browsers to respect the declared
		// Content-Type
		c.Header("X-Content-Type-Options", "nosniff")

		// Cache-Control: testimonial payloads change on moderation and
		// must not be served from intermediary caches
		c.Header("Cache-Control", "no-store")

		// Referrer-Policy: full URL for same-origin, origin only for
		// cross-origin HTTPS
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS only in production to avoid issues during local development
		if cfg.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
