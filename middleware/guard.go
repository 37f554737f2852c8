package middleware

import (
	"context"
	"errors"
	"net/http"

	goVerify "github.com/MrEthical07/goVerify"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the authentication result attached by
// [Guard], or false when the request did not pass through it.
func AuthResultFromContext(ctx context.Context) (*goVerify.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*goVerify.AuthResult)
	return res, ok
}

// ClaimsFromContext returns the verified claims attached by [Guard]. The
// map is empty (not nil) for anonymous pass-through requests.
func ClaimsFromContext(ctx context.Context) (goVerify.Claims, bool) {
	res, ok := AuthResultFromContext(ctx)
	if !ok {
		return nil, false
	}
	return res.Claims, true
}

// Guard wraps a handler chain with the verification pipeline. Authenticated
// requests (and anonymous ones, when the policy allows) continue to the
// next handler with claims in the context; everything else is rejected
// here and the next handler never runs. Whatever the next handler writes
// passes through unchanged.
func Guard(engine *goVerify.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Authenticate(r.Context(), r)
			if err != nil {
				writeRejection(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeRejection maps pipeline errors onto the response contract. Bodies
// distinguish the rejection kind for observability without exposing key
// material or registry internals.
func writeRejection(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, goVerify.ErrNoTokenFound):
		http.Error(w, "No token found.", http.StatusUnauthorized)
	case errors.Is(err, goVerify.ErrUnknownIssuer):
		http.Error(w, "Unknown issuer.", http.StatusUnauthorized)
	case errors.Is(err, goVerify.ErrVerifyRateLimited):
		http.Error(w, "Too many failed attempts.", http.StatusTooManyRequests)
	default:
		http.Error(w, err.Error(), http.StatusUnauthorized)
	}
}
