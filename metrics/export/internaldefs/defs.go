package internaldefs

import (
	goVerify "github.com/MrEthical07/goVerify"
)

// CounterDef binds a [goVerify.MetricID] to its exported name and help text.
type CounterDef struct {
	ID   goVerify.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram metric to its exported name and help text.
type HistogramDef struct {
	ID   goVerify.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in snapshot order.
var CounterDefs = []CounterDef{
	{ID: goVerify.MetricVerifySuccess, Name: "goverify_verify_success_total", Help: "Successfully authenticated requests."},
	{ID: goVerify.MetricAnonymousPass, Name: "goverify_anonymous_pass_total", Help: "Requests forwarded with empty claims under the allow-missing-token policy."},
	{ID: goVerify.MetricNoToken, Name: "goverify_no_token_total", Help: "Requests rejected for carrying no bearer token."},
	{ID: goVerify.MetricUnknownIssuer, Name: "goverify_unknown_issuer_total", Help: "Requests rejected for referencing an unconfigured issuer."},
	{ID: goVerify.MetricMalformedToken, Name: "goverify_malformed_token_total", Help: "Tokens rejected at structural decode."},
	{ID: goVerify.MetricAlgorithmMismatch, Name: "goverify_algorithm_mismatch_total", Help: "Tokens rejected for violating the issuer's algorithm pin."},
	{ID: goVerify.MetricSignatureInvalid, Name: "goverify_signature_invalid_total", Help: "Tokens rejected for an invalid signature."},
	{ID: goVerify.MetricTokenExpired, Name: "goverify_token_expired_total", Help: "Tokens rejected as expired beyond leeway."},
	{ID: goVerify.MetricVerifyRateLimited, Name: "goverify_verify_rate_limited_total", Help: "Requests denied by the failure throttle."},
}

// HistogramDefs lists every histogram in snapshot order.
var HistogramDefs = []HistogramDef{
	{ID: goVerify.MetricAuthenticateLatency, Name: "goverify_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus "le"
// label form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// OTel instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
