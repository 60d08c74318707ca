// Package dto holds the request and response bodies of the HTTP API and the
// mapping from service errors to the error envelope.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/daily-quote/internal/domain"
	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
)

// ErrorResponse is the error body of every API endpoint.
//
//	{"error": "Internal error", "code": "INTERNAL_ERROR", "detail": "listing quotes ..."}
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`

	// Detail is the underlying cause.
	Detail string `json:"detail,omitempty"`

	// Fields maps a request field to what is wrong with it.
	Fields map[string]string `json:"fields,omitempty"`

	TraceID string `json:"traceId,omitempty"`
}

const (
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeConflict    = "CONFLICT"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal    = "INTERNAL_ERROR"
	ErrorCodeTimeout     = "TIMEOUT"

	// ErrorCodeBadRequest is a body that is not JSON or does not fit the
	// request shape.
	ErrorCodeBadRequest = "BAD_REQUEST"
	ErrorCodeTooLarge   = "PAYLOAD_TOO_LARGE"
)

const (
	MessageInternal    = "Internal error"
	MessageValidation  = "Invalid request"
	MessageNotFound    = "Quote not found"
	MessageConflict    = "Quote already exists"
	MessageUnavailable = "Service temporarily unavailable"
	MessageTimeout     = "Request timed out"
)

// requestIDKey is the gin key the request ID middleware stores its ID under.
const requestIDKey = "request_id"

var statusByCode = map[string]int{
	ErrorCodeNotFound:    http.StatusNotFound,
	ErrorCodeConflict:    http.StatusConflict,
	ErrorCodeValidation:  http.StatusBadRequest,
	ErrorCodeBadRequest:  http.StatusBadRequest,
	ErrorCodeUnavailable: http.StatusServiceUnavailable,
	ErrorCodeTimeout:     http.StatusGatewayTimeout,
	ErrorCodeTooLarge:    http.StatusRequestEntityTooLarge,
	ErrorCodeInternal:    http.StatusInternalServerError,
}

// errorKinds is checked in order; the first match decides the response.
var errorKinds = []struct {
	match   func(error) bool
	code    string
	message string
}{
	{domain.IsValidation, ErrorCodeValidation, MessageValidation},
	{domain.IsNotFound, ErrorCodeNotFound, MessageNotFound},
	{domain.IsConflict, ErrorCodeConflict, MessageConflict},
	{domain.IsUnavailable, ErrorCodeUnavailable, MessageUnavailable},
	{func(err error) bool { return errors.Is(err, context.DeadlineExceeded) }, ErrorCodeTimeout, MessageTimeout},
}

// NewErrorResponse returns a body with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: message, Code: code}
}

// NewErrorResponseWithFields is NewErrorResponse plus per-field messages.
func NewErrorResponseWithFields(code, message string, fields map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: message, Code: code, Fields: fields}
}

// WithDetail sets the detail and returns e for chaining.
func (e *ErrorResponse) WithDetail(detail string) *ErrorResponse {
	e.Detail = detail
	return e
}

// WithTraceID sets the trace ID and returns e for chaining.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode returns the status an error code is served with.
// Unknown codes are 500.
func HTTPStatusFromCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// FromDomainError maps err to a status and error body with err's text as
// detail. Errors of no known kind are 500. A nil err is 200 with no body.
func FromDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	resp := NewErrorResponse(ErrorCodeInternal, MessageInternal)

	for _, kind := range errorKinds {
		if kind.match(err) {
			resp = NewErrorResponse(kind.code, kind.message)
			break
		}
	}

	resp.Detail = err.Error()

	// A validation error names the offending field and says what is wrong.
	var invalid *domain.ValidationError
	if resp.Code == ErrorCodeValidation && errors.As(err, &invalid) {
		resp.Error = invalid.Message
		if invalid.Field != "" {
			resp.Fields = map[string]string{invalid.Field: invalid.Message}
		}
	}

	return HTTPStatusFromCode(resp.Code), resp
}

// GetTraceID identifies the request in error bodies: the active span's trace
// ID when tracing is on, otherwise the request ID.
func GetTraceID(c *gin.Context) string {
	if c.Request == nil {
		return c.GetString(requestIDKey)
	}

	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	if id := c.GetString(requestIDKey); id != "" {
		return id
	}

	return c.Request.Header.Get("X-Request-ID")
}

// HandleError writes err as an error response. 5xx responses are logged.
func HandleError(c *gin.Context, err error) {
	status, resp := FromDomainError(err)
	if resp == nil {
		return
	}

	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "request failed",
			slog.Int("status", status),
			slog.String("code", resp.Code),
			slog.Any("error", err),
		)
	}

	c.JSON(status, resp)
}
