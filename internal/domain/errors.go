package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidCode is returned when a submitted verification code does not
	// match the stored digest. The verification state is left untouched.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrRateLimited matches any *RateLimitError via errors.Is.
	ErrRateLimited = errors.New("rate limited")
)

// RateLimitError reports a cooldown violation together with how long the
// caller has to wait before the action becomes allowed again.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	secs := int(e.RetryAfter / time.Second)
	minutes := secs / 60
	seconds := secs % 60
	return fmt.Sprintf("please wait %dm%ds before requesting a new code", minutes, seconds)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
