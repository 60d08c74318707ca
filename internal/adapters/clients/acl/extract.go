package acl

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// dataIslandSelector matches the JSON payloads embedded by the upstream's renderer.
const dataIslandSelector = `script[type="application/json"]`

// ExtractionStrategy is a gjson path to the quote inside one data island,
// e.g. "pageDataDetail.summary.0.value".
type ExtractionStrategy string

// Lookup returns the string at the path. A missing path or a leaf that is not
// a JSON string yields false.
func (s ExtractionStrategy) Lookup(island string) (string, bool) {
	res := gjson.Get(island, string(s))
	if res.Type != gjson.String {
		return "", false
	}

	return res.Str, true
}

// DefaultStrategies returns the known payload locations, most specific first.
// Newer renderer versions nest the page data under props.pageProps.
func DefaultStrategies() []ExtractionStrategy {
	return []ExtractionStrategy{
		"props.pageProps.pageDataDetail.summary.0.value",
		"pageDataDetail.summary.0.value",
	}
}

// Extraction is the outcome of scanning one page.
type Extraction struct {
	Quote string

	// Islands is the number of JSON data islands found on the page.
	Islands int

	// Malformed counts islands that were not valid JSON and were skipped.
	Malformed int
}

// ExtractQuote scans every JSON data island in page and returns the quote
// text. Within one island the first strategy yielding a non-empty string
// wins; across islands the last island yielding one wins. The result is
// trimmed, and an empty result means the page carries no quote.
func ExtractQuote(page []byte, strategies []ExtractionStrategy) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Extraction{}, fmt.Errorf("parsing page: %w", err)
	}

	var (
		result    Extraction
		candidate string
	)

	doc.Find(dataIslandSelector).Each(func(_ int, s *goquery.Selection) {
		result.Islands++

		raw := s.Text()
		if strings.TrimSpace(raw) == "" {
			return
		}

		if !gjson.Valid(raw) {
			result.Malformed++
			return
		}

		for _, strategy := range strategies {
			if value, ok := strategy.Lookup(raw); ok && value != "" {
				candidate = value
				return
			}
		}
	})

	result.Quote = strings.TrimSpace(candidate)

	return result, nil
}
