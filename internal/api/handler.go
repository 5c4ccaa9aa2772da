package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"module-registry-backend/internal/registry"
	"module-registry-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc *registry.Service
}

// NewHandler creates a new API handler around the registry service.
func NewHandler(svc *registry.Service) *Handler {
	return &Handler{svc: svc}
}

// statusFor maps the registry error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var (
		validation *registry.ValidationError
		cfg        *registry.ConfigError
		duplicate  *store.DuplicateError
		notFound   *store.NotFoundError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &cfg):
		return http.StatusBadRequest
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
