package resend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanResend_NeverSent(t *testing.T) {
	assert.True(t, CanResend(nil, DefaultCooldown))
}

func TestCanResend_JustSent(t *testing.T) {
	now := time.Now()
	assert.False(t, CanResend(&now, DefaultCooldown))
}

func TestCanResend_CooldownElapsed(t *testing.T) {
	past := time.Now().Add(-DefaultCooldown - time.Second)
	assert.True(t, CanResend(&past, DefaultCooldown))
}

func TestRemainingWait_NeverSent(t *testing.T) {
	assert.Equal(t, time.Duration(0), RemainingWait(nil, DefaultCooldown))
}

func TestRemainingWait_Eligible(t *testing.T) {
	past := time.Now().Add(-DefaultCooldown - time.Minute)
	assert.Equal(t, time.Duration(0), RemainingWait(&past, DefaultCooldown))
}

func TestRemainingWait_MidCooldown(t *testing.T) {
	sent := time.Now().Add(-time.Minute)
	got := RemainingWait(&sent, DefaultCooldown)
	// 2 minutes remain; allow for the clock reading between Now calls.
	assert.InDelta(t, float64(2*time.Minute), float64(got), float64(2*time.Second))
	assert.Equal(t, time.Duration(0), got%time.Second, "must be whole seconds")
}

func TestRemainingWait_RoundsUpToWholeSecond(t *testing.T) {
	sent := time.Now().Add(-DefaultCooldown + 500*time.Millisecond)
	got := RemainingWait(&sent, DefaultCooldown)
	assert.Equal(t, time.Second, got)
}
