package goVerify

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goVerify/internal/rate"
	"github.com/MrEthical07/goVerify/jwt"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Configuration and collaborators are
// collected with the With* methods; Build validates everything, compiles
// the issuer registry, and fails fast before any request can be served.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	locator   TokenLocator
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration. The config is cloned, so
// later mutation of the argument does not reach the engine.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithIssuer adds or replaces a single issuer entry. Use [NoIssuer] as the
// key to accept tokens without an issuer claim.
func (b *Builder) WithIssuer(key string, ic IssuerConfig) *Builder {
	if b.config.Issuers == nil {
		b.config.Issuers = map[string]IssuerConfig{}
	}
	ic.Secret = cloneBytes(ic.Secret)
	ic.PublicKeyPEM = cloneBytes(ic.PublicKeyPEM)
	b.config.Issuers[key] = ic
	return b
}

// WithTokenLocator replaces the default bearer-header locator.
func (b *Builder) WithTokenLocator(fn TokenLocator) *Builder {
	b.locator = fn
	return b
}

// WithRejectMissingToken overrides the missing-token policy.
func (b *Builder) WithRejectMissingToken(reject bool) *Builder {
	b.config.RejectMissingToken = reject
	return b
}

// WithAuditSink sets the sink receiving authentication decision events.
// It only takes effect when Config.Audit is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithRedis provides the client backing the failure throttle. Required
// when Config.Throttle is enabled, ignored otherwise.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, compiles every issuer's trust
// material, and returns a ready Engine. All violated validation rules are
// reported together, not just the first.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := make(map[string]*jwt.TrustConfig, len(cfg.Issuers))
	var compileErrs []error
	for key, ic := range cfg.Issuers {
		tc, err := jwt.NewTrustConfig(
			ic.Algorithm,
			ic.Secret,
			ic.PublicKeyPEM,
			time.Duration(ic.LeewaySeconds)*time.Second,
		)
		if err != nil {
			compileErrs = append(compileErrs, fmt.Errorf("issuer %q: %w", key, err))
			continue
		}
		registry[key] = tc
	}
	if len(compileErrs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(compileErrs...))
	}

	var limiter *rate.Limiter
	if cfg.Throttle.Enabled {
		if b.redis == nil {
			return nil, errors.New("throttle requires a Redis client (Builder.WithRedis)")
		}
		limiter = rate.New(b.redis, rate.Config{
			MaxFailures: cfg.Throttle.MaxFailures,
			Cooldown:    cfg.Throttle.Cooldown,
		})
	}

	locator := b.locator
	if locator == nil {
		locator = BearerTokenLocator(cfg.TokenHeader)
	}

	return &Engine{
		config:   cfg,
		registry: registry,
		locator:  locator,
		limiter:  limiter,
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:  NewMetrics(cfg.Metrics),
	}, nil
}
