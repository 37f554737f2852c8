// Package middleware exposes the net/http adapter for goVerify.Engine.
//
// [Guard] reads the request through the engine's token locator, runs the
// verification pipeline, and either forwards the request with claims in the
// context or short-circuits with the rejection contract: HTTP 401 with a
// plain-text reason ("No token found.", "Unknown issuer.", or the
// verification failure message), and HTTP 429 when the failure throttle
// denies the request.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement verification logic itself — all decisions are delegated to
// Engine.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or verify JWTs directly (delegates to Engine).
//   - Leak key material or registry contents into responses.
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
