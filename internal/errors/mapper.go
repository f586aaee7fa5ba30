package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API is an error carrying an HTTP status and a stable machine code.
// Handlers return these; infra errors are converted via Map.
type API struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *API) Error() string { return e.Message }

func New(status int, code, msg string) *API {
	return &API{Status: status, Code: code, Message: msg}
}

func BadRequest(msg string) *API {
	return New(http.StatusBadRequest, "BAD_REQUEST", msg)
}

func Unauthorized(msg string) *API {
	return New(http.StatusUnauthorized, "UNAUTHORIZED", msg)
}

func Forbidden(msg string) *API {
	return New(http.StatusForbidden, "FORBIDDEN", msg)
}

func NotFound(msg string) *API {
	return New(http.StatusNotFound, "NOT_FOUND", msg)
}

func Conflict(msg string) *API {
	return New(http.StatusConflict, "CONFLICT", msg)
}

// Map converts repo/infra errors into API errors. Keeps handlers clean
// by centralizing error mapping.
func Map(err error) *API {
	if err == nil {
		return nil
	}

	var apiErr *API
	switch {
	case errors.As(err, &apiErr):
		return apiErr

	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("record already exists")

	case errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, "TIMEOUT", "request timed out")

	case errors.Is(err, context.Canceled):
		return New(499, "CANCELED", "request was canceled")

	default:
		return New(http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// Abort writes the mapped error as the JSON response and stops the
// handler chain.
func Abort(c *gin.Context, err error) {
	apiErr := Map(err)
	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is the store's uniqueness
// violation. The recommendation builder treats it as "already
// recommended this week".
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
