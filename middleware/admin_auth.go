package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jmrodillon/portfolio-backend/errors"
	"github.com/jmrodillon/portfolio-backend/logger"
)

// AdminTokenHeader is the fallback header for clients that cannot set an
// Authorization header.
const AdminTokenHeader = "x-admin-token"

// extractAdminToken returns the operator token from the request: the
// Authorization Bearer value when present, else the x-admin-token header.
func extractAdminToken(c *gin.Context) string {
	raw := c.GetHeader("Authorization")
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return strings.TrimSpace(c.GetHeader(AdminTokenHeader))
}

// AdminAuthMiddleware guards the moderation endpoints with a shared secret.
// The expected token is injected from configuration; an empty expected token
// is a server misconfiguration (500), never treated as "allow all". The
// comparison is constant-time so response timing does not leak where a
// guessed token first differs.
func AdminAuthMiddleware(expectedToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expectedToken == "" {
			logger.GetLogger().Error("Admin token is not configured")
			_ = c.Error(apperrors.MissingAdminToken())
			c.Abort()
			return
		}

		token := extractAdminToken(c)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			logger.GetLogger().Warnw("Rejected admin request",
				"path", c.Request.URL.Path,
				"token", logger.MaskToken(token),
			)
			_ = c.Error(apperrors.Unauthorized("Unauthorized"))
			c.Abort()
			return
		}

		c.Next()
	}
}
