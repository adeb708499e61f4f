package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/dinepos/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/smallbiznis/dinepos/internal/catalog/importer"
	"github.com/smallbiznis/dinepos/internal/export"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	"github.com/smallbiznis/dinepos/internal/pricing"
	reportdomain "github.com/smallbiznis/dinepos/internal/report/domain"
	tabledomain "github.com/smallbiznis/dinepos/internal/table/domain"
	"gorm.io/gorm"
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
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// validationSentinels are the domain errors reported as 400 with their own
// code. Wrapped errors are matched with errors.Is.
var validationSentinels = []error{
	ErrInvalidRequest,
	catalogdomain.ErrInvalidID,
	catalogdomain.ErrInvalidName,
	catalogdomain.ErrInvalidPrice,
	catalogdomain.ErrInvalidTaxRate,
	catalogdomain.ErrInvalidImportRow,
	importer.ErrUnsupportedFormat,
	tabledomain.ErrInvalidID,
	tabledomain.ErrInvalidName,
	tabledomain.ErrInvalidCapacity,
	tabledomain.ErrInvalidStatus,
	tabledomain.ErrInvalidOccupancy,
	orderdomain.ErrInvalidID,
	orderdomain.ErrEmptyCart,
	orderdomain.ErrInvalidQuantity,
	orderdomain.ErrInvalidOrderType,
	orderdomain.ErrInvalidPaymentMode,
	orderdomain.ErrInvalidTable,
	orderdomain.ErrInvalidAmount,
	orderdomain.ErrSubtotalMismatch,
	orderdomain.ErrTotalMismatch,
	orderdomain.ErrInvalidPageToken,
	pricing.ErrInvalidQuantity,
	pricing.ErrInvalidDiscountKind,
	reportdomain.ErrInvalidPeriod,
	reportdomain.ErrInvalidRange,
	reportdomain.ErrInvalidTopN,
	export.ErrUnsupportedFormat,
	auditdomain.ErrInvalidPageToken,
	auditdomain.ErrInvalidTimeRange,
	auditdomain.ErrInvalidAction,
	auditdomain.ErrInvalidActorType,
}

var notFoundSentinels = []error{
	ErrNotFound,
	catalogdomain.ErrNotFound,
	tabledomain.ErrNotFound,
	orderdomain.ErrTableNotFound,
	orderdomain.ErrOrderNotFound,
	gorm.ErrRecordNotFound,
}

var conflictSentinels = []error{
	ErrConflict,
	tabledomain.ErrDuplicateName,
	tabledomain.ErrTableOccupied,
	tabledomain.ErrTableUnavailable,
	orderdomain.ErrTableUnavailable,
	orderdomain.ErrUnknownMenuItem,
}

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

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if sentinel := matchSentinel(err, validationSentinels); sentinel != nil {
		code := sentinel.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(err, code),
				},
			},
		}
	}

	switch {
	case matchSentinel(err, notFoundSentinels) != nil:
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case matchSentinel(err, conflictSentinels) != nil:
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func matchSentinel(err error, sentinels []error) error {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

// classifyErrorForLog gives the request logger a stable type and code.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return "internal_error", code
	}
	return payload.Type, code
}

var validationFields = map[string]string{
	"invalid_request":    "request",
	"empty_cart":         "items",
	"subtotal_mismatch":  "subtotal",
	"total_mismatch":     "total_amount",
	"unsupported_format": "format",
}

func validationErrorField(code string) string {
	if field, ok := validationFields[code]; ok {
		return field
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

// validationErrorMessage keeps the detail of wrapped errors such as the row
// number of a bad import line.
func validationErrorMessage(err error, code string) string {
	switch {
	case code == "invalid_request":
		return "invalid request"
	case err.Error() != code:
		return err.Error()
	default:
		return "invalid value"
	}
}

func conflictMessage(err error) string {
	if sentinel := matchSentinel(err, conflictSentinels); sentinel != nil && err.Error() != sentinel.Error() {
		return err.Error()
	}
	return "conflict"
}
