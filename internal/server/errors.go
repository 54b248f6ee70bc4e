package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pedidofacil/pedidofacil/internal/authorization"
	invoicedomain "github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	orderdomain "github.com/pedidofacil/pedidofacil/internal/order/domain"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"github.com/pedidofacil/pedidofacil/pkg/validate"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorPayload struct {
	Type    string                `json:"type"`
	Message string                `json:"message"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware converts errors attached to the gin context
// into a JSON error body with the right status code. Handlers write
// nothing on failure so the mapping stays in one place.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return validate.New("request", "invalid_request", "invalid request")
}

func mapError(err error) (int, errorPayload) {
	var vErr *validate.Errors
	if errors.As(err, &vErr) && vErr.HasErrors() {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Fields,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, userdomain.ErrInvalidCredentials),
		errors.Is(err, userdomain.ErrInvalidSession),
		errors.Is(err, userdomain.ErrSessionNotFound),
		errors.Is(err, userdomain.ErrSessionExpired),
		errors.Is(err, userdomain.ErrSessionRevoked),
		errors.Is(err, userdomain.ErrAccountDisabled):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, orderdomain.ErrNotOwner):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrEmailTaken),
		errors.Is(err, userdomain.ErrSelfDelete),
		errors.Is(err, invoicedomain.ErrOrderHasInvoice),
		errors.Is(err, invoicedomain.ErrNumberTaken),
		errors.Is(err, invoicedomain.ErrNotEditable),
		errors.Is(err, invoicedomain.ErrNotDraft),
		errors.Is(err, invoicedomain.ErrAlreadyCanceled),
		errors.Is(err, invoicedomain.ErrCancelPaid),
		errors.Is(err, invoicedomain.ErrAlreadyPaid),
		errors.Is(err, invoicedomain.ErrPayCanceled):
		return true
	default:
		return false
	}
}
