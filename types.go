package goVerify

import "github.com/MrEthical07/goVerify/jwt"

// Claims is the decoded payload of a verified token, keyed by claim name.
// It is created fresh per request and never cached.
type Claims = jwt.Claims

// AuthResult is returned by [Engine.Authenticate] and
// [Engine.AuthenticateToken]. When no token was presented and the
// configuration allows anonymous pass-through, Claims is empty and
// TokenPresent is false.
type AuthResult struct {
	Claims       Claims
	Issuer       string
	TokenPresent bool
}
