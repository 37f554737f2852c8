// Package rate provides the Redis-backed fixed-window counter behind the
// optional verification failure throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefix:
//   - vf: — failed verifications per client IP
//
// # What this package must NOT do
//
//   - Decide throttle policy (the Engine owns enable/limits).
//   - Be imported outside the goVerify module.
package rate
