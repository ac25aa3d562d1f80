package handlers

import (
	apperrors "github.com/drsite/drsite-web/pkg/errors"
	"github.com/gin-gonic/gin"
)

// attachError records err on the gin context; the observability middleware
// adds it to the request log. c.Error returns *gin.Error, not error.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches err to the context.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondAppError derives the status from an application error.
func respondAppError(c *gin.Context, message string, err error) {
	respondError(c, apperrors.HTTPStatus(err), message, err)
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.AbortWithStatusJSON(status, gin.H{"error": message, "details": details})
}
