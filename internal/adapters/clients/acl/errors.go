package acl

import (
	"context"
	"errors"
	"net/http"

	"github.com/jsamuelsen/daily-quote/internal/adapters/clients"
)

// MissReason explains why a page produced no quote. Reasons are logged and
// counted but never returned to callers: every miss is just "absent".
type MissReason string

// Miss reasons reported through QuotePageClientConfig.OnMiss.
const (
	MissBodyTooLarge MissReason = "body_too_large"
	MissCanceled     MissReason = "canceled"
	MissTransport    MissReason = "transport"
	MissStatus       MissReason = "status"
	MissUnparsable   MissReason = "unparsable"
	MissNoQuote      MissReason = "no_quote"
)

// classifyFetchError translates a client error into a miss reason.
func classifyFetchError(err error) MissReason {
	switch {
	case errors.Is(err, clients.ErrBodyTooLarge):
		return MissBodyTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return MissCanceled
	default:
		return MissTransport
	}
}

// classifyStatus reports whether a status code carries a page worth parsing.
func classifyStatus(status int) (MissReason, bool) {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return "", true
	}

	return MissStatus, false
}
