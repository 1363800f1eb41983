package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/versoindustries/verso-backend-sub001/pkg/errors"
)

// parseDateQuery reads a required YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, key+" query parameter is required")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, key+" must be formatted YYYY-MM-DD")
	}
	return date, nil
}

// parseTimeQuery reads a required RFC3339 query parameter.
func parseTimeQuery(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, key+" query parameter is required")
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, key+" must be an RFC3339 timestamp")
	}
	return ts, nil
}

// optionalString returns a pointer to the query value, or nil when absent.
func optionalString(c *gin.Context, key string) *string {
	if value := c.Query(key); value != "" {
		return &value
	}
	return nil
}
