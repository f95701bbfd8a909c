package response

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/softdesk/pkg/apperror"
	"anoa.com/softdesk/pkg/logger"
	"anoa.com/softdesk/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextTokenID  = "token_id"
	ContextTokenExp = "token_expires_at"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uint, error) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, apperror.ErrUnauthorized
	}

	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ParseID reads a numeric path parameter. Anything that is not a positive integer is
// reported as not found so malformed ids look the same as unknown ones.
func ParseID(c *gin.Context, param string) (uint, error) {
	// Ids are stored as signed 64-bit integers; anything larger cannot exist.
	id, err := strconv.ParseUint(c.Param(param), 10, 63)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s %q: %w", param, c.Param(param), apperror.ErrNotFound)
	}
	return uint(id), nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
	}

	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		logger.Log.WithFields(logger.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Errorf("internal error: %v", err)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(code, gin.H{"error": "validation failed", "fields": validationErr.Fields})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
