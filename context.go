package goVerify

import (
	"context"
	"net"
	"net/http"
)

type clientIPContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine uses it
// to key the optional failure throttle and to tag audit events. Callers
// behind a trusted proxy should resolve X-Forwarded-For themselves and
// attach the result here.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func clientIP(ctx context.Context, r *http.Request) string {
	if ip := clientIPFromContext(ctx); ip != "" {
		return ip
	}
	if r == nil {
		return ""
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
