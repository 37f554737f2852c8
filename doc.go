// Package goVerify authenticates HTTP requests bearing signed JWTs against
// a per-issuer trust configuration and attaches the decoded claims to the
// request context. Verification is stateless per request: no session store,
// no token issuance, no revocation — only cryptographic verification of
// what the request already carries.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goVerify is the public surface. It exposes [Engine], [Builder], [Config],
// the audit/metrics types, and [TokenLocator]. The verification core lives
// in the jwt sub-package; HTTP adaptation lives in middleware; the Redis
// failure throttle lives under internal/ and is never exported.
//
// # Security model
//
// The trust configuration selected by the issuer claim — never the token
// header — dictates which algorithm verifies the token, so algorithm
// substitution (including alg=none) cannot select a weaker path. The
// issuer claim is read unverified only as a registry lookup key; every
// rejection kind flows through one dispatch path so configured and
// unconfigured issuers cost comparable work, and the optional failure
// throttle counts unknown-issuer probes like any other failure.
//
// # Performance contract
//
// Authenticate is the hot path. With throttle, audit, and metrics disabled
// it performs no I/O and no locking: pure parsing and signature
// verification against an immutable registry.
package goVerify
