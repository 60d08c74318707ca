package domain

import (
	"fmt"
	"time"
)

// QuoteKey identifies the quote published for one calendar date.
// At most one Quote exists per key.
type QuoteKey struct {
	// Month is the lowercase English month name, e.g. "january".
	Month string

	// Day is the two-digit, zero-padded day of month, e.g. "07".
	Day string

	// Year is the four-digit calendar year.
	Year int
}

// String renders the key in the upstream addressing scheme: "march-21-2023".
func (k QuoteKey) String() string {
	return fmt.Sprintf("%s-%s-%d", k.Month, k.Day, k.Year)
}

// Quote is the daily quote for one calendar date, as cached by the store.
// A Quote is created once and never mutated afterwards.
type Quote struct {
	Month string
	Day   string
	Year  int

	// Text is the quote extracted from the upstream page. Never empty once persisted.
	Text string

	// URL is the upstream page the quote was extracted from.
	URL string

	// CreatedAt and UpdatedAt are set by the store on insert.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the unique key of the quote.
func (q *Quote) Key() QuoteKey {
	return QuoteKey{Month: q.Month, Day: q.Day, Year: q.Year}
}

// NewQuote builds an unsaved Quote for the given location and text.
func NewQuote(loc Location, text string) *Quote {
	return &Quote{
		Month: loc.Key.Month,
		Day:   loc.Key.Day,
		Year:  loc.Key.Year,
		Text:  text,
		URL:   loc.URL,
	}
}

// YearRange is the inclusive range of years covered by across-years lookups.
type YearRange struct {
	From int
	To   int
}

// Years lists every year in the range in ascending order.
// An inverted range yields no years.
func (r YearRange) Years() []int {
	if r.To < r.From {
		return nil
	}

	years := make([]int, 0, r.To-r.From+1)
	for y := r.From; y <= r.To; y++ {
		years = append(years, y)
	}

	return years
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}
