package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/invorahq/invora/internal/auth/domain"
	clientdomain "github.com/invorahq/invora/internal/client/domain"
	companydomain "github.com/invorahq/invora/internal/company/domain"
	creditsdomain "github.com/invorahq/invora/internal/credits/domain"
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	publicinvoicedomain "github.com/invorahq/invora/internal/publicinvoice/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTooManyReqs  = errors.New("too_many_requests")
)

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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// validationFields maps domain validation sentinels to the field they
// complain about.
var validationFields = map[error]string{
	authdomain.ErrInvalidEmail:        "email",
	authdomain.ErrInvalidPassword:     "password",
	companydomain.ErrInvalidName:      "name",
	companydomain.ErrInvalidVATRate:   "default_vat_rate",
	companydomain.ErrInvalidPrefix:    "invoice_prefix",
	clientdomain.ErrInvalidClientType: "client_type",
	clientdomain.ErrInvalidName:       "name",
	clientdomain.ErrInvalidEmail:      "email",
	clientdomain.ErrTaxIDRequired:     "tax_id",
	invoicedomain.ErrNoItems:          "items",
	invoicedomain.ErrInvalidItem:      "items",
	invoicedomain.ErrInvalidVATRate:   "vat_rate",
	invoicedomain.ErrInvalidDueDate:   "due_date",
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	for sentinel, field := range validationFields {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest, errorPayload{
				Type:    "validation_error",
				Message: "validation error",
				Errors: []ValidationError{
					{Field: field, Code: sentinel.Error(), Message: sentinel.Error()},
				},
			}
		}
	}

	switch {
	case errors.Is(err, invoicedomain.ErrInvalidCurrency),
		errors.Is(err, companydomain.ErrInvalidCurrency):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "currency", Code: "invalid_currency", Message: "unsupported currency"},
			},
		}

	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}

	case errors.Is(err, creditsdomain.ErrNoCredits):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "no_credits",
			Message: "invoice credit limit reached, upgrade your plan",
		}

	case errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "an account with this email already exists",
		}

	case errors.Is(err, invoicedomain.ErrInvoiceNotDraft),
		errors.Is(err, invoicedomain.ErrInvoiceImmutable),
		errors.Is(err, invoicedomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "operation not allowed in the invoice's current status",
		}

	case errors.Is(err, creditsdomain.ErrUnknownPlan):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "plan", Code: "unknown_plan", Message: "unknown plan code"},
			},
		}

	case errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, creditsdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, invoicedomain.ErrClientNotFound),
		errors.Is(err, publicinvoicedomain.ErrNotFound),
		errors.Is(err, publicinvoicedomain.ErrInvoiceNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}

	case errors.Is(err, ErrTooManyReqs):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}

	case errors.Is(err, clientdomain.ErrInvalidID),
		errors.Is(err, clientdomain.ErrInvalidCompany),
		errors.Is(err, companydomain.ErrInvalidCompany),
		errors.Is(err, invoicedomain.ErrInvalidCompany),
		errors.Is(err, creditsdomain.ErrInvalidUser):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}
