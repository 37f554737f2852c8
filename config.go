package goVerify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goVerify/jwt"
)

// NoIssuer is the registry key selected when a token carries no issuer
// claim. It can be configured like any other issuer to accept such tokens.
const NoIssuer = "no-issuer"

// Config defines the construction-time surface of the verification engine.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable for the lifetime of the Engine.
type Config struct {
	// Issuers maps an issuer identifier (or [NoIssuer]) to the trust
	// material used to verify its tokens. Required.
	Issuers map[string]IssuerConfig

	// TokenHeader is the request header the default locator scans,
	// matched case-insensitively. Default "Authorization".
	TokenHeader string

	// RejectMissingToken controls the no-token policy: true rejects the
	// request, false forwards it with empty claims. Default true.
	RejectMissingToken bool

	Throttle ThrottleConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// IssuerConfig is the raw trust material for a single issuer. Exactly one
// of Secret or PublicKeyPEM must be set, matching the algorithm family.
type IssuerConfig struct {
	Algorithm     jwt.Algorithm
	Secret        []byte
	PublicKeyPEM  []byte
	LeewaySeconds int
}

// ThrottleConfig tunes the optional Redis-backed failure throttle. When
// enabled, verification failures are counted per client IP in a fixed
// window and requests over the budget are rejected before any key material
// is touched.
type ThrottleConfig struct {
	Enabled     bool
	MaxFailures int
	Cooldown    time.Duration
}

// AuditConfig tunes the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig tunes the lock-free metrics collector.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: Authorization header,
// missing tokens rejected, throttle/audit/metrics disabled. Issuers must
// still be populated before Build.
func DefaultConfig() Config {
	return Config{
		TokenHeader:        "Authorization",
		RejectMissingToken: true,
		Throttle: ThrottleConfig{
			Enabled:     false,
			MaxFailures: 20,
			Cooldown:    time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Issuers != nil {
		out.Issuers = make(map[string]IssuerConfig, len(cfg.Issuers))
		for key, ic := range cfg.Issuers {
			ic.Secret = cloneBytes(ic.Secret)
			ic.PublicKeyPEM = cloneBytes(ic.PublicKeyPEM)
			out.Issuers[key] = ic
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the registry shape and policy flags. Unlike a
// first-failure check, it collects every violated rule so a misconfigured
// deployment is diagnosable in one pass; the returned error wraps one entry
// per violation and names the offending issuer key.
func (c *Config) Validate() error {
	var violations []error

	if len(c.Issuers) == 0 {
		violations = append(violations, errors.New("Issuers mapping is required and must not be empty"))
	}
	if strings.TrimSpace(c.TokenHeader) == "" {
		violations = append(violations, errors.New("TokenHeader must not be blank"))
	}

	for key, ic := range c.Issuers {
		if strings.TrimSpace(key) == "" {
			violations = append(violations, errors.New("issuer key must not be blank"))
		}
		for _, err := range ic.validate() {
			violations = append(violations, fmt.Errorf("issuer %q: %w", key, err))
		}
	}

	if c.Throttle.Enabled {
		if c.Throttle.MaxFailures <= 0 {
			violations = append(violations, errors.New("Throttle MaxFailures must be > 0 when throttle is enabled"))
		}
		if c.Throttle.Cooldown <= 0 {
			violations = append(violations, errors.New("Throttle Cooldown must be > 0 when throttle is enabled"))
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		violations = append(violations, errors.New("Audit BufferSize must be > 0 when audit is enabled"))
	}

	if len(violations) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(violations...))
	}

	return nil
}

func (ic IssuerConfig) validate() []error {
	var errs []error

	if ic.LeewaySeconds < 0 {
		errs = append(errs, errors.New("leewaySeconds must be >= 0"))
	}
	if !ic.Algorithm.Valid() {
		// Family checks below depend on a recognized algorithm.
		errs = append(errs, fmt.Errorf("unrecognized alg %q", string(ic.Algorithm)))
		return errs
	}

	hasSecret := len(ic.Secret) > 0
	hasPublicKey := len(ic.PublicKeyPEM) > 0

	if ic.Algorithm.Symmetric() {
		if !hasSecret {
			errs = append(errs, fmt.Errorf("alg %s requires a secret", ic.Algorithm))
		}
		if hasPublicKey {
			errs = append(errs, fmt.Errorf("alg %s is secret-based and must not carry a public key", ic.Algorithm))
		}
		return errs
	}

	if !hasPublicKey {
		errs = append(errs, fmt.Errorf("alg %s requires a public key", ic.Algorithm))
	}
	if hasSecret {
		errs = append(errs, fmt.Errorf("alg %s is public-key based and must not carry a secret", ic.Algorithm))
	}
	return errs
}
