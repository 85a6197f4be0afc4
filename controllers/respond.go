package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicpulse-be/apperrors"
)

// respondError maps the error taxonomy onto HTTP statuses. Unclassified
// errors become a generic 500 so internals never reach the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrMissingBeforeImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Issue has no before image"})
	case errors.Is(err, apperrors.ErrVerificationService):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Verification service unavailable, retry later"})
	case errors.Is(err, apperrors.ErrNotificationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Notification service unavailable, retry later"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
