package goVerify

import "errors"

var (
	// ErrNoTokenFound is returned when no bearer token is present and the
	// configuration requires one.
	ErrNoTokenFound = errors.New("no token found")
	// ErrUnknownIssuer is returned when the token references an issuer with
	// no trust configuration; verification is never attempted.
	ErrUnknownIssuer = errors.New("unknown issuer")
	// ErrVerifyRateLimited is returned when the failure throttle denies the
	// request before verification runs.
	ErrVerifyRateLimited = errors.New("verification attempts rate limited")
	// ErrEngineNotReady is returned when an Engine is used before Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)
