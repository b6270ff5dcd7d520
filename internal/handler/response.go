package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"terroir/internal/assistant"
	"terroir/internal/domain"
	"terroir/internal/middleware"
	"terroir/internal/parser"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ParseErrorDetails locates a decode failure in the sanitized text.
type ParseErrorDetails struct {
	Line   int      `json:"line,omitempty"`
	Column int      `json:"column,omitempty"`
	Hints  []string `json:"hints"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rle *assistant.RateLimitError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest, "EMPTY_INPUT", "import text is empty"
	case errors.Is(err, domain.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge, "INPUT_TOO_LARGE", "import text exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnparseableInput):
		return http.StatusUnprocessableEntity, "UNPARSEABLE_INPUT", err.Error()
	case errors.Is(err, domain.ErrNoDimensions):
		return http.StatusUnprocessableEntity, "NO_DIMENSIONS", "no dimensions container found; expected an object with a \"dimensions\" key"
	case errors.Is(err, domain.ErrTargetsRequired):
		return http.StatusBadRequest, "TARGETS_REQUIRED", "territory and dossier identifiers are required"
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED", "dossier failed validation"
	case errors.Is(err, domain.ErrArchiveFailed):
		return http.StatusBadGateway, "ARCHIVE_FAILED", "raw import upload to storage failed"
	case errors.Is(err, domain.ErrPersistFailed):
		return http.StatusInternalServerError, "PERSIST_FAILED", "dossier could not be persisted"
	case errors.As(err, &rle):
		return http.StatusTooManyRequests, "ASSISTANT_RATE_LIMITED", "research assistant is rate limited; retry later"
	case errors.Is(err, domain.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable, "ASSISTANT_UNAVAILABLE", "research assistant unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		slog.ErrorContext(c.Request.Context(), "internal error", "component", "handler", "request_id", requestID, "error", err)
	}

	apiErr := &APIError{Code: code, Message: msg}
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		apiErr.Message = pe.Err.Error()
		apiErr.Details = ParseErrorDetails{Line: pe.Line, Column: pe.Column, Hints: nonNilHints(pe.Hints)}
	}
	var rle *assistant.RateLimitError
	if errors.As(err, &rle) {
		c.Header("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
	}
	c.JSON(status, APIResponse{Success: false, Error: apiErr})
}

func nonNilHints(h []string) []string {
	if h == nil {
		return []string{}
	}
	return h
}
