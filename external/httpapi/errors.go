package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orcavozapp/orcavoz/internal/budget"
	"github.com/orcavozapp/orcavoz/internal/repository"
	"github.com/orcavozapp/orcavoz/internal/wizard"
)

// userIDHeader identifies the authenticated account. Authentication
// itself happens upstream; this layer only requires the header to be
// present.
const userIDHeader = "X-User-ID"

func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader(userIDHeader)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + userIDHeader + " header"})
		return "", false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, wizard.ErrNoActiveWizard):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrWrongStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrEmptyTranscript),
		errors.Is(err, wizard.ErrServiceIncomplete),
		errors.Is(err, wizard.ErrNoPendingItem),
		errors.Is(err, wizard.ErrNoItems),
		errors.Is(err, wizard.ErrItemIndex),
		errors.Is(err, budget.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
