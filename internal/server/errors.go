package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/splitpay/internal/fee"
	paymentdomain "github.com/smallbiznis/splitpay/internal/payment/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware renders the last gin error after the handler
// chain ran, so handlers only ever record errors and never write bodies
// for failure paths.
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
		c.Header("Content-Type", "application/json")
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

// mapError translates the domain error taxonomy to transport status codes.
// The taxonomy itself is the contract; the codes live only here.
func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    err.Error(),
			Message: validationMessage(err),
		}
	case errors.Is(err, fee.ErrUnsupportedMethod):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    fee.ErrUnsupportedMethod.Error(),
			Message: "unsupported payment_method",
		}
	case errors.Is(err, paymentdomain.ErrIdempotencyConflict):
		return http.StatusConflict, errorPayload{
			Type:    paymentdomain.ErrIdempotencyConflict.Error(),
			Message: "idempotency key reused with a different payload",
		}
	case errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrUnsupportedCurrency),
		errors.Is(err, paymentdomain.ErrMethodRequired),
		errors.Is(err, paymentdomain.ErrIncompatibleInstallments),
		errors.Is(err, paymentdomain.ErrInstallmentsOutOfRange),
		errors.Is(err, paymentdomain.ErrSplitCountOutOfRange),
		errors.Is(err, paymentdomain.ErrSplitPercentMismatch),
		errors.Is(err, paymentdomain.ErrIdempotencyKeyRequired):
		return true
	default:
		return false
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, paymentdomain.ErrInvalidAmount):
		return "amount must be greater than zero"
	case errors.Is(err, paymentdomain.ErrUnsupportedCurrency):
		return "unsupported currency"
	case errors.Is(err, paymentdomain.ErrMethodRequired):
		return "payment_method required"
	case errors.Is(err, paymentdomain.ErrIncompatibleInstallments):
		return "pix does not accept installments"
	case errors.Is(err, paymentdomain.ErrInstallmentsOutOfRange):
		return "card installments must be between 1 and 12"
	case errors.Is(err, paymentdomain.ErrSplitCountOutOfRange):
		return "splits must be between 1 and 5"
	case errors.Is(err, paymentdomain.ErrSplitPercentMismatch):
		return "sum of split percents must be 100"
	case errors.Is(err, paymentdomain.ErrIdempotencyKeyRequired):
		return "Idempotency-Key header required"
	default:
		return "invalid request"
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status == http.StatusConflict:
		return "conflict", payload.Type
	case status >= http.StatusInternalServerError:
		return "internal_error", payload.Type
	case status == http.StatusNotFound:
		return "not_found", payload.Type
	default:
		return "validation_error", payload.Type
	}
}
