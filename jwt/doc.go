// Package jwt holds per-issuer trust configurations and the token
// verification core. A TrustConfig pins exactly one signing algorithm and
// the matching key material; verification never consults the token header
// to decide which algorithm family runs.
package jwt
