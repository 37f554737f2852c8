package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm identifies a supported JOSE signing algorithm. The value matches
// the token header "alg" field exactly.
type Algorithm string

const (
	// AlgHS256 is an HMAC-SHA256 shared-secret algorithm.
	AlgHS256 Algorithm = "HS256"
	// AlgHS384 is an HMAC-SHA384 shared-secret algorithm.
	AlgHS384 Algorithm = "HS384"
	// AlgHS512 is an HMAC-SHA512 shared-secret algorithm.
	AlgHS512 Algorithm = "HS512"
	// AlgRS256 is an RSA PKCS#1 v1.5 SHA-256 public-key algorithm.
	AlgRS256 Algorithm = "RS256"
	// AlgRS384 is an RSA PKCS#1 v1.5 SHA-384 public-key algorithm.
	AlgRS384 Algorithm = "RS384"
	// AlgRS512 is an RSA PKCS#1 v1.5 SHA-512 public-key algorithm.
	AlgRS512 Algorithm = "RS512"
	// AlgES256 is an ECDSA P-256 SHA-256 public-key algorithm.
	AlgES256 Algorithm = "ES256"
	// AlgES384 is an ECDSA P-384 SHA-384 public-key algorithm.
	AlgES384 Algorithm = "ES384"
	// AlgES512 is an ECDSA P-521 SHA-512 public-key algorithm.
	AlgES512 Algorithm = "ES512"
	// AlgEdDSA is the Ed25519 public-key algorithm.
	AlgEdDSA Algorithm = "EdDSA"
)

var (
	// ErrMalformed is returned when a token cannot be decoded into
	// header, payload, and signature segments.
	ErrMalformed = errors.New("malformed token")
	// ErrAlgorithmMismatch is returned when the token header declares an
	// algorithm other than the one pinned by the trust configuration.
	ErrAlgorithmMismatch = errors.New("algorithm mismatch")
	// ErrSignatureInvalid is returned when signature verification fails.
	ErrSignatureInvalid = errors.New("signature invalid")
	// ErrExpired is returned when the token expiration, adjusted for
	// leeway, is in the past.
	ErrExpired = errors.New("token expired")
)

// Claims holds the decoded payload of a verified token.
type Claims map[string]any

// Symmetric reports whether the algorithm uses a shared secret rather than
// a public/private key pair.
func (a Algorithm) Symmetric() bool {
	return strings.HasPrefix(string(a), "HS")
}

// Valid reports whether the algorithm is one of the supported constants.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgHS256, AlgHS384, AlgHS512,
		AlgRS256, AlgRS384, AlgRS512,
		AlgES256, AlgES384, AlgES512,
		AlgEdDSA:
		return true
	default:
		return false
	}
}

// TrustConfig is the immutable verification material for a single issuer.
// Exactly one of the secret or the public key is populated, decided by the
// algorithm family at construction.
type TrustConfig struct {
	algorithm Algorithm
	leeway    time.Duration
	secret    []byte
	verifyKey any

	// now is replaceable in tests for deterministic expiry checks.
	now func() time.Time
}

// NewTrustConfig builds a TrustConfig from raw key material. Symmetric
// algorithms require a secret and reject public-key material; asymmetric
// algorithms require a PEM-encoded public key and reject a secret.
// Key parsing happens here so malformed material fails before any request
// is served.
func NewTrustConfig(alg Algorithm, secret, publicKeyPEM []byte, leeway time.Duration) (*TrustConfig, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("unsupported algorithm %q", string(alg))
	}
	if leeway < 0 {
		return nil, errors.New("leeway must be >= 0")
	}

	t := &TrustConfig{
		algorithm: alg,
		leeway:    leeway,
		now:       time.Now,
	}

	if alg.Symmetric() {
		if len(secret) == 0 {
			return nil, fmt.Errorf("%s requires a secret", alg)
		}
		if len(publicKeyPEM) > 0 {
			return nil, fmt.Errorf("%s is secret-based and must not carry a public key", alg)
		}
		t.secret = append([]byte(nil), secret...)
		return t, nil
	}

	if len(secret) > 0 {
		return nil, fmt.Errorf("%s is public-key based and must not carry a secret", alg)
	}
	if len(publicKeyPEM) == 0 {
		return nil, fmt.Errorf("%s requires a public key", alg)
	}

	key, err := parsePublicKey(alg, publicKeyPEM)
	if err != nil {
		return nil, err
	}
	t.verifyKey = key

	return t, nil
}

// Algorithm returns the pinned signing algorithm.
func (t *TrustConfig) Algorithm() Algorithm {
	return t.algorithm
}

// Leeway returns the clock-skew tolerance applied to expiry checks.
func (t *TrustConfig) Leeway() time.Duration {
	return t.leeway
}

// Verify checks the raw compact token against this trust configuration and
// returns the decoded claims. Checks run in order: structural decode,
// algorithm pin, signature, expiry. Each failure maps to one of the
// package sentinel errors, so callers can classify with errors.Is.
func (t *TrustConfig) Verify(raw string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(raw, claims, t.keyfunc)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrSignatureInvalid
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid exp claim", ErrMalformed)
	}
	if exp != nil {
		// Equality at now-leeway is still acceptable; only strictly older
		// tokens are rejected.
		if t.now().Sub(exp.Time) > t.leeway {
			return nil, ErrExpired
		}
	}

	return Claims(claims), nil
}

// keyfunc enforces the algorithm pin before releasing key material. The
// trust configuration, never the token header, decides which verification
// path runs; "none" and unsigned tokens can never match a pinned value.
func (t *TrustConfig) keyfunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != string(t.algorithm) {
		return nil, fmt.Errorf("%w: token declares %q, trust configuration pins %q",
			ErrAlgorithmMismatch, token.Method.Alg(), string(t.algorithm))
	}
	if t.algorithm.Symmetric() {
		return t.secret, nil
	}
	return t.verifyKey, nil
}

// PeekIssuer reads the issuer claim without verifying the token. The result
// is only usable as a trust-configuration lookup key; nothing else may be
// derived from it before Verify succeeds. A token without an issuer claim
// yields an empty string.
func PeekIssuer(raw string) (string, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	iss, err := claims.GetIssuer()
	if err != nil {
		// Non-string issuer: treat as absent, full verification still runs
		// against whichever configuration the sentinel key selects.
		return "", nil
	}

	return iss, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrAlgorithmMismatch):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
}

func parsePublicKey(alg Algorithm, pemBytes []byte) (any, error) {
	switch {
	case strings.HasPrefix(string(alg), "RS"):
		key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid RSA public key: %w", err)
		}
		return key, nil
	case strings.HasPrefix(string(alg), "ES"):
		key, err := jwt.ParseECPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid ECDSA public key: %w", err)
		}
		return key, nil
	case alg == AlgEdDSA:
		parsed, err := jwt.ParseEdPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid ed25519 public key: %w", err)
		}
		key, ok := parsed.(ed25519.PublicKey)
		if !ok {
			return nil, errors.New("invalid ed25519 public key type")
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", string(alg))
	}
}
