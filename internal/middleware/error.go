package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   apperror.Kind     `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorHandler renders errors attached with c.Error as JSON and turns panics
// into 500 responses.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic while handling request",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "internal server error",
					Code:  apperror.KindInternal,
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperror.As(c.Errors.Last().Err)
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(c.Errors.Last().Err),
			)
		}
		message := appErr.Message
		if appErr.Kind == apperror.KindInternal {
			message = "internal server error"
		}
		c.JSON(status, ErrorResponse{Error: message, Code: appErr.Kind, Fields: appErr.Fields})
	}
}
