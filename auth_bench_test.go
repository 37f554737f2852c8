package goVerify

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goVerify/jwt"
)

func newBenchmarkEngine(b *testing.B, metrics bool) (*Engine, string) {
	b.Helper()

	builder := New().
		WithIssuer("issuer-a", IssuerConfig{
			Algorithm: jwt.AlgHS256,
			Secret:    testSecret,
		}).
		WithMetricsEnabled(metrics)

	engine, err := builder.Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	b.Cleanup(engine.Close)

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"iss": "issuer-a",
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString(testSecret)
	if err != nil {
		b.Fatalf("sign failed: %v", err)
	}

	return engine, raw
}

func BenchmarkAuthenticateToken(b *testing.B) {
	engine, raw := newBenchmarkEngine(b, false)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.AuthenticateToken(context.Background(), raw); err != nil {
			b.Fatalf("authenticate failed: %v", err)
		}
	}
}

func BenchmarkAuthenticateTokenWithMetrics(b *testing.B) {
	engine, raw := newBenchmarkEngine(b, true)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.AuthenticateToken(context.Background(), raw); err != nil {
			b.Fatalf("authenticate failed: %v", err)
		}
	}
}

func BenchmarkAuthenticateTokenParallel(b *testing.B) {
	engine, raw := newBenchmarkEngine(b, true)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.AuthenticateToken(context.Background(), raw); err != nil {
				b.Errorf("authenticate failed: %v", err)
				return
			}
		}
	})
}
