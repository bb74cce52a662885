// Package credential computes and checks irreversible bcrypt digests for
// passwords and short verification codes. Passwords and codes use different
// work factors; cost is always a parameter, nothing in this package assumes
// one value for both.
package credential

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	// PasswordCost is the bcrypt work factor for account passwords.
	PasswordCost = bcrypt.DefaultCost
	// CodeCost is the bcrypt work factor for short numeric verification codes.
	CodeCost = 5
)

// Hasher bounds the number of concurrently running bcrypt computations so a
// burst of logins cannot starve the rest of the process of CPU.
type Hasher struct {
	sem *semaphore.Weighted
}

// NewHasher creates a Hasher allowing up to maxConcurrent digests at once.
func NewHasher(maxConcurrent int64) *Hasher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Hasher{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Hash computes the bcrypt digest of secret at the given cost. It blocks
// while waiting for a worker slot; ctx bounds that wait.
func (h *Hasher) Hash(ctx context.Context, secret string, cost int) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether secret matches the stored digest. A mismatch is a
// normal outcome, not an error; the error return covers only infrastructure
// failures (context cancellation while queued).
func (h *Hasher) Verify(ctx context.Context, secret, digest string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		// Malformed digest: treat as a mismatch rather than surfacing
		// storage corruption to the caller as a 500.
		return false, nil
	}
	return true, nil
}
