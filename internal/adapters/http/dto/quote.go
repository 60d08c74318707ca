package dto

import (
	"time"

	"github.com/jsamuelsen/daily-quote/internal/domain"
)

// QuoteRequest is the body of POST /api/quote.
type QuoteRequest struct {
	Date        string `json:"date" validate:"max=64"`
	AcrossYears bool   `json:"acrossYears"`
}

// Validate checks that Date is present and parseable.
// Implements Validatable.
func (r *QuoteRequest) Validate() error {
	_, err := domain.ParseDate(r.Date)
	return err
}

// ParsedDate returns the requested calendar date.
func (r *QuoteRequest) ParsedDate() (time.Time, error) {
	return domain.ParseDate(r.Date)
}

// QuoteDateURI binds the :date path parameter of the REST endpoints.
type QuoteDateURI struct {
	Date string `uri:"date" json:"date" validate:"required,calendardate"`
}

// QuoteResponse is the single-date result. An absent quote is sent as
// {"quote": ""} with no url.
type QuoteResponse struct {
	Quote string `json:"quote"`
	URL   string `json:"url,omitempty"`
}

// YearQuote is one entry of an across-years result.
type YearQuote struct {
	Year  int    `json:"year"`
	Quote string `json:"quote"`
	URL   string `json:"url"`
}

// QuotesResponse is the across-years result, ordered by ascending year.
type QuotesResponse struct {
	Quotes []YearQuote `json:"quotes"`
}

// NewQuoteResponse converts a quote, or its absence, to the single-date body.
func NewQuoteResponse(q *domain.Quote) QuoteResponse {
	if q == nil {
		return QuoteResponse{}
	}

	return QuoteResponse{Quote: q.Text, URL: q.URL}
}

// NewQuotesResponse converts quotes to the across-years body. The list is
// never null on the wire.
func NewQuotesResponse(quotes []*domain.Quote) QuotesResponse {
	out := QuotesResponse{Quotes: make([]YearQuote, 0, len(quotes))}

	for _, q := range quotes {
		out.Quotes = append(out.Quotes, YearQuote{Year: q.Year, Quote: q.Text, URL: q.URL})
	}

	return out
}
