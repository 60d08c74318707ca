package ports

// Cache lookup results reported to QuoteMetrics.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Store insert results reported to QuoteMetrics.
const (
	InsertCreated   = "created"
	InsertDuplicate = "duplicate"
	InsertError     = "error"
)

// QuoteMetrics records pipeline outcomes. Implementations must be safe for
// concurrent use.
type QuoteMetrics interface {
	CacheLookups(result string, n int)
	UpstreamFetch(found bool)
	StoreInsert(result string)
}

// NopQuoteMetrics discards everything.
type NopQuoteMetrics struct{}

func (NopQuoteMetrics) CacheLookups(string, int) {}
func (NopQuoteMetrics) UpstreamFetch(bool)       {}
func (NopQuoteMetrics) StoreInsert(string)       {}
