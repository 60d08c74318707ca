// Package acl is the Anti-Corruption Layer between the upstream quote website
// and the domain.
//
// The upstream publishes one HTML page per calendar date. The quote is not in
// the markup itself but inside a JSON data island emitted by the page's
// server-side renderer:
//
//	<script type="application/json">{"props":{"pageProps":{"pageDataDetail":
//	  {"summary":[{"value":"  Be total.  "}]}}}}</script>
//
// Renderer versions disagree on nesting depth, so the payload location is
// modelled as an ordered list of [ExtractionStrategy] gjson paths rather than
// a fixed path. [DefaultStrategies] covers both known shapes; new shapes are
// added by appending a strategy, not by changing control flow.
//
// # Translation rules
//
// Nothing from the upstream leaks past this package except the trimmed quote
// text. Transport failures, non-2xx responses, malformed
// islands and missing fields all translate to "no quote" (see [MissReason]).
// The caller cannot tell them apart, and does not need to: none of them is
// cached and the next request simply tries again. Every page gets its own
// attempt; the client's circuit breaker only gates the health check.
package acl
