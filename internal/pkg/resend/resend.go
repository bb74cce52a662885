// Package resend implements the cooldown arithmetic for re-issuing
// verification codes and password-reset requests.
package resend

import "time"

const (
	// DefaultCooldown is the minimum gap between verification-code sends.
	DefaultCooldown = 3 * time.Minute
	// ResetCooldown is the minimum gap between password-reset requests.
	ResetCooldown = 5 * time.Minute
)

// CanResend reports whether a new code may be sent. A nil lastSentAt means
// nothing was ever sent, which always permits an immediate send.
func CanResend(lastSentAt *time.Time, cooldown time.Duration) bool {
	if lastSentAt == nil {
		return true
	}
	return time.Since(*lastSentAt) >= cooldown
}

// RemainingWait returns how long the caller must wait until a resend becomes
// allowed, rounded up to the next whole second so the caller is never told to
// wait less than actually remains. Returns 0 once eligible.
func RemainingWait(lastSentAt *time.Time, cooldown time.Duration) time.Duration {
	if lastSentAt == nil {
		return 0
	}
	remaining := cooldown - time.Since(*lastSentAt)
	if remaining <= 0 {
		return 0
	}
	if r := remaining % time.Second; r != 0 {
		remaining += time.Second - r
	}
	return remaining
}
