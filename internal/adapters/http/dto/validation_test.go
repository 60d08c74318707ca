package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-quote/internal/domain"
)

type yearsFilter struct {
	Store string `json:"store" validate:"required,oneof=postgres mongodb"`
	From  int    `json:"from"  validate:"gte=2014"`
	To    int    `json:"to"    validate:"lte=2100"`
	Note  string `json:"note"  validate:"max=8"`
	Slug  string `json:"slug"  validate:"min=3"`
	Skip  string `json:"-"     validate:"max=1"`
}

func validFilter() yearsFilter {
	return yearsFilter{Store: "postgres", From: 2014, To: 2023, Note: "ok", Slug: "march-21"}
}

func TestValidator_Shared(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}

func TestValidate_FieldMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*yearsFilter)
		field   string
		message string
	}{
		{name: "required", mutate: func(f *yearsFilter) { f.Store = "" }, field: "store", message: "this field is required"},
		{name: "oneof", mutate: func(f *yearsFilter) { f.Store = "redis" }, field: "store", message: "must be one of: postgres mongodb"},
		{name: "gte", mutate: func(f *yearsFilter) { f.From = 1999 }, field: "from", message: "must be greater than or equal to 2014"},
		{name: "lte", mutate: func(f *yearsFilter) { f.To = 3000 }, field: "to", message: "must be less than or equal to 2100"},
		{name: "max string", mutate: func(f *yearsFilter) { f.Note = "far too long" }, field: "note", message: "must be at most 8 characters"},
		{name: "min string", mutate: func(f *yearsFilter) { f.Slug = "ab" }, field: "slug", message: "must be at least 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFilter()
			tt.mutate(&f)

			err := Validate(&f)
			require.ErrorIs(t, err, ErrValidation)
			require.True(t, IsValidationError(err))

			assert.Equal(t, map[string]string{tt.field: tt.message}, ValidationErrors(err))
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	f := validFilter()
	require.NoError(t, Validate(&f))
}

func TestValidate_HiddenFieldUsesGoName(t *testing.T) {
	f := validFilter()
	f.Skip = "too long"

	err := Validate(&f)
	require.Error(t, err)

	assert.Contains(t, ValidationErrors(err), "Skip")
}

func TestValidationErrors_NonValidatorError(t *testing.T) {
	err := domain.NewValidationError("date", "Date is required")

	assert.False(t, IsValidationError(err))
	assert.Empty(t, ValidationErrors(err))
}

func TestValidationMessage_UnknownTag(t *testing.T) {
	type withUUID struct {
		ID string `json:"id" validate:"uuid4"`
	}

	err := Validate(&withUUID{ID: "not-a-uuid"})
	require.Error(t, err)

	assert.Equal(t, "failed validation: uuid4", ValidationErrors(err)["id"])
}

func TestValidateAll_RunsQuoteRequestRules(t *testing.T) {
	tests := []struct {
		name      string
		req       QuoteRequest
		wantError bool
		wantTag   bool
	}{
		{name: "iso date", req: QuoteRequest{Date: "2023-03-21"}},
		{name: "timestamp", req: QuoteRequest{Date: "2023-03-21T06:00:00Z", AcrossYears: true}},
		{name: "missing date", req: QuoteRequest{}, wantError: true},
		{name: "unparsable date", req: QuoteRequest{Date: "someday"}, wantError: true},
		{name: "oversized date", req: QuoteRequest{Date: strings.Repeat("2", 65)}, wantError: true, wantTag: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAll(&tt.req)
			if !tt.wantError {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.wantTag, IsValidationError(err))
			assert.Equal(t, !tt.wantTag, domain.IsValidation(err))
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantBinding bool
		wantValid   bool
	}{
		{name: "valid", body: `{"date":"2023-03-21","acrossYears":true}`},
		{name: "malformed json", body: `{"date":`, wantBinding: true},
		{name: "wrong type", body: `{"date":20230321}`, wantBinding: true},
		{name: "missing date", body: `{}`, wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req QuoteRequest
			err := BindAndValidate(c, &req)

			switch {
			case tt.wantBinding:
				require.ErrorIs(t, err, ErrBinding)
			case tt.wantValid:
				require.ErrorIs(t, err, ErrValidation)
			default:
				require.NoError(t, err)
				assert.Equal(t, "2023-03-21", req.Date)
				assert.True(t, req.AcrossYears)
			}
		})
	}
}

func TestBindURIAndValidate(t *testing.T) {
	tests := []struct {
		date      string
		wantField bool
	}{
		{date: "2023-03-21"},
		{date: "2023-02-30", wantField: true},
		{date: "yesterday", wantField: true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			var (
				uri QuoteDateURI
				err error
			)

			router := gin.New()
			router.GET("/api/v1/quotes/:date", func(c *gin.Context) {
				err = BindURIAndValidate(c, &uri)
			})
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/quotes/"+tt.date, http.NoBody))

			if !tt.wantField {
				require.NoError(t, err)
				assert.Equal(t, tt.date, uri.Date)

				return
			}

			require.Error(t, err)
			assert.Equal(t, "must be a calendar date such as 2023-03-21", ValidationErrors(err)["date"])
		})
	}
}
