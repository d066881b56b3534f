package api

import (
	"errors"
	"fitbuddy/app/internal/domain"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	notProMessage = "Upgrade to Pro to use the AI Assistant."
	notProCode    = "not_pro"
)

// abortWithDomainError maps the domain error taxonomy onto HTTP statuses.
// Anything unrecognised is logged and reported as fallback with a 500.
func abortWithDomainError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotEntitled):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": notProMessage, "code": notProCode})
	case errors.Is(err, domain.ErrProvider):
		abortWithError(c, http.StatusBadGateway, "The assistant is unavailable right now")
	case errors.Is(err, domain.ErrSynthesis):
		abortWithError(c, http.StatusBadGateway, "Speech synthesis failed")
	default:
		log.Printf("ERROR: %s: %v", fallback, err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
