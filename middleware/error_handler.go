package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jmrodillon/portfolio-backend/errors"
	"github.com/jmrodillon/portfolio-backend/logger"
	"github.com/jmrodillon/portfolio-backend/types"
)

// ErrorHandler converts errors attached via c.Error into the JSON error
// envelope {ok:false, error} with the status mapped from the error type.
// Authorization failures intentionally carry no detail; validation failures
// surface their actionable message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if appError, ok := err.(*errors.AppError); ok {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, string(appError.Type))

			c.JSON(statusCode, types.ErrorResponse{OK: false, Error: clientMessage(appError)})
			return
		}

		// Gin binding errors surface as validation failures.
		if c.Errors.Last().Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, 400, "Request binding error")
			c.JSON(400, types.ErrorResponse{OK: false, Error: "Invalid request body"})
			return
		}

		logger.LogHTTPError(c, err, 500, "Unexpected server error")
		c.JSON(500, types.ErrorResponse{OK: false, Error: "Internal server error"})
	}
}

// clientMessage picks what the caller is allowed to see. Auth failures stay
// generic; everything else uses the error's message.
func clientMessage(appError *errors.AppError) string {
	if appError.Type == errors.AuthError {
		return "Unauthorized"
	}
	return appError.Message
}
