package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rutujak-bora/crm/internal/apierror"
	authdomain "github.com/rutujak-bora/crm/internal/auth/domain"
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

// errorResponse keeps detail at the top level; it is the only field clients read.
type errorResponse struct {
	Detail string       `json:"detail"`
	Error  errorPayload `json:"error"`
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

		status, resp := mapError(lastErr.Err, authdomain.Namespace(c.GetString(contextNamespaceKey)))
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, resp)
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
	return newValidationError("request", "invalid_request", "Invalid request")
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

func mapError(err error, namespace authdomain.Namespace) (int, errorResponse) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		detail := "Invalid request"
		if len(vErr.Errors) > 0 {
			detail = vErr.Errors[0].Message
		}
		return http.StatusBadRequest, errorResponse{
			Detail: detail,
			Error: errorPayload{
				Type:    apierror.TypeValidation,
				Message: detail,
				Errors:  vErr.Errors,
			},
		}
	}

	classified := apierror.Classify(err)
	if errors.Is(err, authdomain.ErrWrongNamespace) && namespace.Valid() {
		classified.Detail = "Invalid token for " + namespace.DisplayName()
	}
	return classified.Status, errorResponse{
		Detail: classified.Detail,
		Error: errorPayload{
			Type:    classified.Type,
			Message: classified.Detail,
		},
	}
}

// classifyErrorForLog feeds the request logger; internal errors keep their code.
func classifyErrorForLog(err error) (string, string) {
	classified := apierror.Classify(err)
	if classified.Type == apierror.TypeInternal {
		return classified.Type, "internal_error"
	}
	return classified.Type, err.Error()
}
