//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/jsamuelsen/daily-quote/internal/adapters/http/dto"
)

// scenario is the state one feature scenario builds up across its steps.
type scenario struct {
	t testing.TB

	env   *testEnv
	store *memStore

	response     *http.Response
	responseBody []byte
}

var errNoResponse = errors.New("no request has been made")

// reset gives the scenario its own service, store and upstream.
func (sc *scenario) reset() {
	sc.env, sc.store = newTestEnv(sc.t)
	sc.response = nil
	sc.responseBody = nil
}

func initializeScenario(t testing.TB) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		sc := &scenario{t: t}

		ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			sc.reset()
			return ctx, nil
		})

		ctx.Step(`^the service is running$`, sc.theServiceIsRunning)
		ctx.Step(`^the upstream publishes "([^"]*)" for "([^"]*)"$`, sc.theUpstreamPublishes)
		ctx.Step(`^I post a quote request for "([^"]*)"$`, sc.iPostAQuoteRequestFor)
		ctx.Step(`^I post an across-years quote request for "([^"]*)"$`, sc.iPostAnAcrossYearsQuoteRequestFor)
		ctx.Step(`^I post the body:$`, sc.iPostTheBody)
		ctx.Step(`^I request GET "([^"]*)"$`, sc.iRequestGET)
		ctx.Step(`^the response status should be (\d+)$`, sc.theResponseStatusShouldBe)
		ctx.Step(`^the response should contain "([^"]*)"$`, sc.theResponseShouldContain)
		ctx.Step(`^the response should match:$`, sc.theResponseShouldMatch)
		ctx.Step(`^the quote should be "([^"]*)"$`, sc.theQuoteShouldBe)
		ctx.Step(`^the years should be "([^"]*)"$`, sc.theYearsShouldBe)
		ctx.Step(`^the upstream should have served "([^"]*)" (\d+) times?$`, sc.theUpstreamShouldHaveServed)
		ctx.Step(`^the store should hold (\d+) quotes?$`, sc.theStoreShouldHold)
	}
}

func (sc *scenario) theServiceIsRunning(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, _, err := sc.env.get(ctx, "/-/live")
	if err != nil {
		return fmt.Errorf("service unreachable at %s: %w", sc.env.server.URL, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("liveness probe answered %d", resp.StatusCode)
	}

	return nil
}

func (sc *scenario) theUpstreamPublishes(quote, slug string) error {
	sc.env.upstream.Publish(slug, quote)
	return nil
}

func (sc *scenario) iPostAQuoteRequestFor(ctx context.Context, date string) error {
	return sc.post(ctx, fmt.Sprintf(`{"date":%q}`, date))
}

func (sc *scenario) iPostAnAcrossYearsQuoteRequestFor(ctx context.Context, date string) error {
	return sc.post(ctx, fmt.Sprintf(`{"date":%q,"acrossYears":true}`, date))
}

func (sc *scenario) iPostTheBody(ctx context.Context, body *godog.DocString) error {
	return sc.post(ctx, body.Content)
}

func (sc *scenario) post(ctx context.Context, body string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, respBody, err := sc.env.postQuote(ctx, body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	sc.response, sc.responseBody = resp, respBody

	return nil
}

func (sc *scenario) iRequestGET(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, body, err := sc.env.get(ctx, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	sc.response, sc.responseBody = resp, body

	return nil
}

func (sc *scenario) theResponseStatusShouldBe(expectedCode int) error {
	if sc.response == nil {
		return errNoResponse
	}

	if got := sc.response.StatusCode; got != expectedCode {
		return fmt.Errorf("status %d, want %d; body %s", got, expectedCode, sc.responseBody)
	}

	return nil
}

func (sc *scenario) theResponseShouldContain(text string) error {
	if sc.response == nil {
		return errNoResponse
	}

	if !strings.Contains(string(sc.responseBody), text) {
		return fmt.Errorf("body %s lacks %q", sc.responseBody, text)
	}

	return nil
}

func (sc *scenario) theResponseShouldMatch(expected *godog.DocString) error {
	var want, got any

	if err := json.Unmarshal([]byte(expected.Content), &want); err != nil {
		return fmt.Errorf("expected body is not JSON: %w", err)
	}

	if err := json.Unmarshal(sc.responseBody, &got); err != nil {
		return fmt.Errorf("response body is not JSON: %w", err)
	}

	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("expected body %s, got %s", expected.Content, string(sc.responseBody))
	}

	return nil
}

func (sc *scenario) theQuoteShouldBe(expected string) error {
	var body dto.QuoteResponse
	if err := json.Unmarshal(sc.responseBody, &body); err != nil {
		return fmt.Errorf("decoding quote: %w", err)
	}

	if body.Quote != expected {
		return fmt.Errorf("expected quote %q, got %q", expected, body.Quote)
	}

	return nil
}

func (sc *scenario) theYearsShouldBe(expected string) error {
	var body dto.QuotesResponse
	if err := json.Unmarshal(sc.responseBody, &body); err != nil {
		return fmt.Errorf("decoding quotes: %w", err)
	}

	years := make([]string, 0, len(body.Quotes))
	for _, q := range body.Quotes {
		years = append(years, strconv.Itoa(q.Year))
	}

	if got := strings.Join(years, ","); got != expected {
		return fmt.Errorf("expected years %s, got %s", expected, got)
	}

	return nil
}

func (sc *scenario) theUpstreamShouldHaveServed(slug string, times int) error {
	if got := sc.env.upstream.Hits(slug); got != times {
		return fmt.Errorf("expected %d requests for %s, got %d", times, slug, got)
	}

	return nil
}

func (sc *scenario) theStoreShouldHold(n int) error {
	if got := sc.store.Len(); got != n {
		return fmt.Errorf("expected %d stored quotes, got %d", n, got)
	}

	return nil
}

// TestFeatures runs test/features. GODOG_TAGS narrows the scenarios.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}
