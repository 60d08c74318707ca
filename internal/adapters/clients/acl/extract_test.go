package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func island(json string) string {
	return `<script type="application/json">` + json + `</script>`
}

func page(islands ...string) []byte {
	html := "<html><head><title>Quote</title></head><body><h1>Daily quote</h1>"
	for _, i := range islands {
		html += i
	}

	return []byte(html + "</body></html>")
}

const (
	nestedIsland  = `{"props":{"pageProps":{"pageDataDetail":{"summary":[{"value":"Nested quote."}]}}}}`
	shallowIsland = `{"pageDataDetail":{"summary":[{"value":"Shallow quote."}]}}`
)

func TestExtractionStrategy_Lookup(t *testing.T) {
	s := ExtractionStrategy("summary.0.value")

	tests := []struct {
		name   string
		island string
		want   string
		found  bool
	}{
		{name: "string leaf", island: `{"summary":[{"value":"x"}]}`, want: "x", found: true},
		{name: "empty string leaf", island: `{"summary":[{"value":""}]}`, found: true},
		{name: "second element ignored", island: `{"summary":[{"text":"a"},{"value":"b"}]}`},
		{name: "missing key", island: `{"other":1}`},
		{name: "empty array", island: `{"summary":[]}`},
		{name: "numeric leaf", island: `{"summary":[{"value":42}]}`},
		{name: "null leaf", island: `{"summary":[{"value":null}]}`},
		{name: "object leaf", island: `{"summary":[{"value":{"text":"x"}}]}`},
		{name: "not an object", island: `"summary"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Lookup(tt.island)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractQuote(t *testing.T) {
	tests := []struct {
		name      string
		page      []byte
		want      string
		islands   int
		malformed int
	}{
		{
			name:    "nested path",
			page:    page(island(nestedIsland)),
			want:    "Nested quote.",
			islands: 1,
		},
		{
			name:    "shallow path",
			page:    page(island(shallowIsland)),
			want:    "Shallow quote.",
			islands: 1,
		},
		{
			name: "nested path wins within one island",
			page: page(island(`{"props":{"pageProps":{"pageDataDetail":{"summary":[{"value":"Nested."}]}}},` +
				`"pageDataDetail":{"summary":[{"value":"Shallow."}]}}`)),
			want:    "Nested.",
			islands: 1,
		},
		{
			name: "empty nested value falls through to shallow path",
			page: page(island(`{"props":{"pageProps":{"pageDataDetail":{"summary":[{"value":""}]}}},` +
				`"pageDataDetail":{"summary":[{"value":"Shallow."}]}}`)),
			want:    "Shallow.",
			islands: 1,
		},
		{
			name:    "last island wins",
			page:    page(island(nestedIsland), island(shallowIsland)),
			want:    "Shallow quote.",
			islands: 2,
		},
		{
			name:    "islands without a quote do not override",
			page:    page(island(nestedIsland), island(`{"buildId":"abc"}`)),
			want:    "Nested quote.",
			islands: 2,
		},
		{
			name:      "malformed island is skipped",
			page:      page(island(`{not json`), island(shallowIsland), island(`[1,2`)),
			want:      "Shallow quote.",
			islands:   3,
			malformed: 2,
		},
		{
			name:    "whitespace is trimmed",
			page:    page(island(`{"pageDataDetail":{"summary":[{"value":"\n  Be total.  \t"}]}}`)),
			want:    "Be total.",
			islands: 1,
		},
		{
			name:    "whitespace-only value is absent",
			page:    page(island(`{"pageDataDetail":{"summary":[{"value":"   "}]}}`)),
			islands: 1,
		},
		{
			name:    "non-string value is ignored",
			page:    page(island(`{"pageDataDetail":{"summary":[{"value":{"text":"x"}}]}}`)),
			islands: 1,
		},
		{
			name:    "other script types are ignored",
			page:    page(`<script type="text/javascript">{"pageDataDetail":{"summary":[{"value":"JS."}]}}</script>`),
			islands: 0,
		},
		{
			name:    "empty island",
			page:    page(island("")),
			islands: 1,
		},
		{
			name: "no islands",
			page: []byte("<html><body>Not found</body></html>"),
		},
		{
			name: "empty page",
			page: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractQuote(tt.page, DefaultStrategies())

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Quote)
			assert.Equal(t, tt.islands, got.Islands)
			assert.Equal(t, tt.malformed, got.Malformed)
		})
	}
}

func TestExtractQuote_CustomStrategies(t *testing.T) {
	p := page(island(`{"data":{"quote":"Custom."}}`))

	got, err := ExtractQuote(p, DefaultStrategies())
	require.NoError(t, err)
	assert.Empty(t, got.Quote)

	got, err = ExtractQuote(p, append(DefaultStrategies(), ExtractionStrategy("data.quote")))
	require.NoError(t, err)
	assert.Equal(t, "Custom.", got.Quote)
}
