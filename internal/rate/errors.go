package rate

import "errors"

// ErrThrottled is returned when an identifier or IP has exhausted its
// attempt budget.
var ErrThrottled = errors.New("rate limited")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("rate redis unavailable")
