package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/errs"
	"tasktracker/internal/middleware"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func getUserAndRole(c *gin.Context) (userID int64, roleID int) {
	userID, roleID, _ = middleware.Identity(c)
	return
}

// parseID reads a positive int64 path parameter and answers 400 otherwise.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// queryInt64 parses an optional numeric query parameter.
func queryInt64(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.Invalid("invalid %s", name)
	}
	return &v, nil
}

// parseTime accepts RFC3339 and plain dates; empty input yields nil.
func parseTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errs.Invalid("invalid time %q (RFC3339 expected)", s)
}

// respondError maps domain errors onto HTTP statuses and logs server errors.
func respondError(c *gin.Context, logger *slog.Logger, tag string, err error) {
	switch {
	case errs.Is(err, errs.ErrInvalidInput):
		logger.Info(tag+"[400]", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errs.Is(err, errs.ErrNotFound):
		logger.Info(tag+"[404]", "error", err)
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		logger.Error(tag+"[err]", "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func forbidden(c *gin.Context, logger *slog.Logger, tag string, userID int64) {
	logger.Info(tag+"[deny]", "user_id", userID)
	c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
}
