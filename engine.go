package goVerify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goVerify/internal/rate"
	"github.com/MrEthical07/goVerify/jwt"
	"github.com/google/uuid"
)

// Engine runs the per-request authentication pipeline: locate credential,
// resolve issuer, verify, attach claims. It holds no per-request state and
// the issuer registry is read-only after Build, so a single Engine serves
// arbitrarily many concurrent requests without locking.
type Engine struct {
	config   Config
	registry map[string]*jwt.TrustConfig
	locator  TokenLocator
	limiter  *rate.Limiter
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close drains the audit dispatcher. Safe on a nil Engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms for the exporters under metrics/export.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Authenticate is the direct-call entry point for HTTP hosts: it runs the
// locator against the request and dispatches the result. The returned
// error is one of the package sentinels (possibly wrapped with detail) and
// is what middleware adapters translate into the 401 contract; the request
// itself is never mutated.
func (e *Engine) Authenticate(ctx context.Context, r *http.Request) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	raw, ok := e.locator(r)
	if !ok {
		return e.dispatchMissing(ctx, clientIP(ctx, r))
	}

	return e.dispatch(ctx, raw, clientIP(ctx, r))
}

// AuthenticateToken is the transport-agnostic entry point for hosts that
// extract the credential themselves (gRPC interceptors, message consumers,
// callback-style frameworks). An empty token follows the same
// missing-token policy as Authenticate; the client IP, if any, is taken
// from the context via [WithClientIP].
func (e *Engine) AuthenticateToken(ctx context.Context, raw string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if raw == "" {
		return e.dispatchMissing(ctx, clientIPFromContext(ctx))
	}

	return e.dispatch(ctx, raw, clientIPFromContext(ctx))
}

func (e *Engine) dispatchMissing(ctx context.Context, ip string) (*AuthResult, error) {
	if e.config.RejectMissingToken {
		e.metricInc(MetricNoToken)
		e.emitAudit(ctx, EventNoToken, "", ip, false, ErrNoTokenFound.Error())
		return nil, ErrNoTokenFound
	}

	e.metricInc(MetricAnonymousPass)
	e.emitAudit(ctx, EventAnonymousPass, "", ip, true, "")
	return &AuthResult{Claims: Claims{}}, nil
}

// dispatch runs IssuerUnresolved → Verifying → Authenticated/Rejected for
// a located token.
func (e *Engine) dispatch(ctx context.Context, raw, ip string) (*AuthResult, error) {
	start := time.Now()

	if e.limiter != nil {
		if err := e.limiter.Check(ctx, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricVerifyRateLimited)
				e.emitAudit(ctx, EventVerifyThrottled, "", ip, false, ErrVerifyRateLimited.Error())
				return nil, ErrVerifyRateLimited
			}
			// Redis being down must not take authentication down with it;
			// verification below is still cryptographically complete.
		}
	}

	issuer, err := jwt.PeekIssuer(raw)
	if err != nil {
		return nil, e.reject(ctx, "", ip, err)
	}
	if issuer == "" {
		issuer = NoIssuer
	}

	trust, ok := e.registry[issuer]
	if !ok {
		e.metricInc(MetricUnknownIssuer)
		e.recordFailure(ctx, ip)
		e.emitAudit(ctx, EventUnknownIssuer, issuer, ip, false, ErrUnknownIssuer.Error())
		return nil, ErrUnknownIssuer
	}

	claims, err := trust.Verify(raw)
	if err != nil {
		return nil, e.reject(ctx, issuer, ip, err)
	}

	e.metricInc(MetricVerifySuccess)
	e.observeLatency(time.Since(start))
	e.emitAudit(ctx, EventVerifySuccess, issuer, ip, true, "")

	return &AuthResult{
		Claims:       claims,
		Issuer:       issuer,
		TokenPresent: true,
	}, nil
}

// reject funnels every verification failure through one code path so all
// rejection kinds cost the same work (see the issuer-probing note in the
// package docs) and returns the error unchanged for the caller.
func (e *Engine) reject(ctx context.Context, issuer, ip string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrMalformed):
		e.metricInc(MetricMalformedToken)
	case errors.Is(err, jwt.ErrAlgorithmMismatch):
		e.metricInc(MetricAlgorithmMismatch)
	case errors.Is(err, jwt.ErrExpired):
		e.metricInc(MetricTokenExpired)
	default:
		e.metricInc(MetricSignatureInvalid)
	}

	e.recordFailure(ctx, ip)
	e.emitAudit(ctx, EventVerifyFailure, issuer, ip, false, err.Error())
	return err
}

func (e *Engine) recordFailure(ctx context.Context, ip string) {
	if e.limiter == nil {
		return
	}
	// Best effort: a Redis hiccup while counting must not affect the
	// response already decided.
	_ = e.limiter.RecordFailure(ctx, ip)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observeLatency(d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(MetricAuthenticateLatency, d)
}

func (e *Engine) emitAudit(ctx context.Context, eventType, issuer, ip string, success bool, errMsg string) {
	if e.audit == nil {
		return
	}
	e.audit.Emit(ctx, AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Issuer:    issuer,
		IP:        ip,
		Success:   success,
		Error:     errMsg,
	})
}
