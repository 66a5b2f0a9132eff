package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencua/gateway/internal/shared/errdefs"
)

// writeError maps a domain error to its status code and writes the
// standard error body. Unknown sessions always produce the same body so
// callers cannot probe ids.
func writeError(c *gin.Context, err error) {
	var (
		notFound     *errdefs.NotFoundError
		invalid      *errdefs.InvalidActionError
		provisioning *errdefs.ProvisioningError
		provider     *errdefs.ProviderError
		turnLimit    *errdefs.TurnLimitError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &provisioning):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &provider):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &turnLimit):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
