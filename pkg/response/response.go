// Package response writes gin JSON responses for usecase outcomes.
package response

import (
	"net/http"

	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error writes err with the status its kind maps to. Unclassified errors
// are logged and reported as 500.
func Error(c *gin.Context, err error) {
	appErr := apperror.As(err)
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.Error("[HTTP] Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.JSON(status, body)
}

// BadRequest reports a binding or parameter problem.
func BadRequest(c *gin.Context, message string) {
	Error(c, apperror.NewValidationError(message))
}
