package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultQuoteBaseURL is where the upstream publishes one page per date.
const DefaultQuoteBaseURL = "https://isha.sadhguru.org/en/wisdom/quotes/date"

// Location is the upstream address of the quote for one date.
type Location struct {
	Key QuoteKey
	URL string
}

// Locator maps calendar dates onto the upstream addressing scheme.
// The zero value uses DefaultQuoteBaseURL.
type Locator struct {
	BaseURL string
}

// NewLocator creates a locator for the given base URL.
// A trailing slash on baseURL is ignored.
func NewLocator(baseURL string) Locator {
	return Locator{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Locate returns the key and URL for date's month and day in the given year.
// Only the month and day of date are used; year may differ from date.Year().
func (l Locator) Locate(date time.Time, year int) Location {
	key := KeyFor(date, year)

	base := l.BaseURL
	if base == "" {
		base = DefaultQuoteBaseURL
	}

	return Location{
		Key: key,
		URL: fmt.Sprintf("%s/%s", base, key),
	}
}

// KeyFor derives the quote key for date's month and day in the given year.
func KeyFor(date time.Time, year int) QuoteKey {
	return QuoteKey{
		Month: strings.ToLower(date.Month().String()),
		Day:   fmt.Sprintf("%02d", date.Day()),
		Year:  year,
	}
}
