package goVerify

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goVerify/jwt"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type captureSink struct {
	events chan AuditEvent
}

func newCaptureSink(buffer int) *captureSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &captureSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *captureSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func buildAuditTestEngine(t *testing.T, audit AuditConfig, sink AuditSink) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Issuers = map[string]IssuerConfig{
		"issuer-a": {Algorithm: jwt.AlgHS256, Secret: testSecret},
	}
	cfg.Audit = audit

	engine, err := New().
		WithConfig(cfg).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}
	engine := buildAuditTestEngine(t, AuditConfig{Enabled: false}, sink)

	ctx := WithClientIP(context.Background(), "203.0.113.1")
	_, _ = engine.AuthenticateToken(ctx, "not-a-jwt")
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditSuccessEventFields(t *testing.T) {
	sink := newCaptureSink(8)
	engine := buildAuditTestEngine(t, AuditConfig{
		Enabled:    true,
		BufferSize: 16,
		DropIfFull: true,
	}, sink)

	raw := signHS256(t, testSecret, gojwt.MapClaims{
		"iss": "issuer-a",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	ctx := WithClientIP(context.Background(), "198.51.100.33")
	if _, err := engine.AuthenticateToken(ctx, raw); err != nil {
		t.Fatalf("AuthenticateToken failed: %v", err)
	}

	select {
	case ev := <-sink.events:
		if ev.EventType != EventVerifySuccess {
			t.Fatalf("expected %q event, got %q", EventVerifySuccess, ev.EventType)
		}
		if ev.EventID == "" {
			t.Fatal("expected event id to be populated")
		}
		if ev.Issuer != "issuer-a" {
			t.Fatalf("expected issuer-a, got %q", ev.Issuer)
		}
		if ev.IP != "198.51.100.33" {
			t.Fatalf("expected IP 198.51.100.33, got %q", ev.IP)
		}
		if !ev.Success {
			t.Fatal("expected success flag on verify.success event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event to be received")
	}
}

func TestAuditFailureEventDoesNotCarryToken(t *testing.T) {
	sink := newCaptureSink(8)
	engine := buildAuditTestEngine(t, AuditConfig{
		Enabled:    true,
		BufferSize: 16,
		DropIfFull: true,
	}, sink)

	raw := signHS256(t, []byte("a-completely-different-secret-32"), gojwt.MapClaims{
		"iss": "issuer-a",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, _ = engine.AuthenticateToken(context.Background(), raw)

	select {
	case ev := <-sink.events:
		if ev.EventType != EventVerifyFailure {
			t.Fatalf("expected %q event, got %q", EventVerifyFailure, ev.EventType)
		}
		if ev.Success {
			t.Fatal("expected failure flag")
		}
		if ev.Error == "" {
			t.Fatal("expected error field to be populated")
		}
		if strings.Contains(ev.Error, raw) {
			t.Fatal("raw token leaked into audit error field")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event to be received")
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	event := AuditEvent{
		EventID:   "ev-1",
		Timestamp: time.Now().UTC(),
		EventType: EventVerifySuccess,
		Issuer:    "issuer-a",
		IP:        "127.0.0.1",
		Success:   true,
	}
	sink.Emit(context.Background(), event)

	if !buf.Contains("verify.success") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains("\"issuer\":\"issuer-a\"") {
		t.Fatal("expected JSON log line to contain issuer")
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, &countingSink{})

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(string(b.buf), v)
}
