// Package ports holds the interfaces the quote pipeline depends on. Every
// method takes a context first and speaks in domain types and domain errors.
package ports

import (
	"context"

	"github.com/jsamuelsen/daily-quote/internal/domain"
)

// QuoteSource extracts the quote published on an upstream page.
//
// Implementations never report why a quote could not be obtained: a failed
// fetch, an unparsable page and a page without a quote all return ok == false.
type QuoteSource interface {
	// FetchQuote performs a single fetch of url and returns the trimmed quote text.
	FetchQuote(ctx context.Context, url string) (quote string, ok bool)
}

// QuoteRepository persists quotes. The store itself enforces that at most one
// quote exists per domain.QuoteKey.
type QuoteRepository interface {
	// FindByKey returns the quote stored for key.
	// Returns domain.ErrNotFound if nothing is cached for that date.
	FindByKey(ctx context.Context, key domain.QuoteKey) (*domain.Quote, error)

	// ListByMonthDay returns every cached quote for month and day, any year,
	// ordered by ascending year.
	ListByMonthDay(ctx context.Context, month, day string) ([]*domain.Quote, error)

	// Insert stores a new quote and sets its CreatedAt/UpdatedAt fields.
	// Returns domain.ErrConflict if a quote for the same key already exists.
	Insert(ctx context.Context, quote *domain.Quote) error
}

// SchemaManager is implemented by stores that can create their own tables or indexes.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
}

// QuoteStore is a repository with an explicit connection lifecycle.
type QuoteStore interface {
	QuoteRepository
	SchemaManager
	HealthChecker

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
