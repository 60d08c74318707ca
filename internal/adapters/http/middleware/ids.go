// Package middleware provides the gin middleware chain of the quote service.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
)

const (
	// HeaderRequestID carries the per-hop request ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID carries the ID shared by every hop of one caller
	// interaction.
	HeaderCorrelationID = "X-Correlation-ID"
)

type idKey string

const (
	requestIDKey     idKey = "request_id"
	correlationIDKey idKey = "correlation_id"
)

// idStamp describes one request header that is echoed back, generated when
// absent and made available to handlers and outbound clients.
type idStamp struct {
	header  string
	key     idKey
	withLog func(context.Context, string) context.Context
}

func (s idStamp) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(s.header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(string(s.key), id)
		c.Header(s.header, id)

		ctx := context.WithValue(c.Request.Context(), s.key, id)
		c.Request = c.Request.WithContext(s.withLog(ctx, id))

		c.Next()
	}
}

// RequestID stamps every request with an X-Request-ID. The ID reaches the
// request logger, the request context and the outbound upstream call.
func RequestID() gin.HandlerFunc {
	return idStamp{header: HeaderRequestID, key: requestIDKey, withLog: logging.WithRequestID}.handler()
}

// CorrelationID does the same for X-Correlation-ID.
func CorrelationID() gin.HandlerFunc {
	return idStamp{header: HeaderCorrelationID, key: correlationIDKey, withLog: logging.WithCorrelationID}.handler()
}

// GetRequestID returns the request ID stored on c, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(string(requestIDKey))
}

// GetCorrelationID returns the correlation ID stored on c, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(string(correlationIDKey))
}

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the correlation ID carried by ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, correlationIDKey)
}

// ContextWithRequestID returns a copy of ctx carrying id as the request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithCorrelationID returns a copy of ctx carrying id as the
// correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func idFromContext(ctx context.Context, key idKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}
