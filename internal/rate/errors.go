package rate

import "errors"

var (
	// ErrRateLimited is returned when an IP exceeds the failure budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
