// Package auth implements registration, login and the email-verification
// lifecycle: Unverified -> CodeIssued -> Verified, with code rotation on
// resend. All writes to the verification fields on the user record happen
// here and nowhere else.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/learnza/learnza-api/internal/domain"
	"github.com/learnza/learnza-api/internal/infrastructure/google"
	"github.com/learnza/learnza-api/internal/pkg/id"
	"github.com/learnza/learnza-api/internal/pkg/resend"
	pkgtoken "github.com/learnza/learnza-api/internal/pkg/token"
)

// UserStore is the record-store surface the lifecycle needs. Create must be
// atomic on the email address: of two concurrent creates for the same email,
// exactly one succeeds and the other reports domain.ErrConflict.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error)
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	ClaimCodeSend(ctx context.Context, userID string, prevSentAt *time.Time, updates map[string]interface{}) error
}

// Hasher computes and checks credential digests.
type Hasher interface {
	Hash(ctx context.Context, secret string, cost int) (string, error)
	Verify(ctx context.Context, secret, digest string) (bool, error)
}

// TokenSigner issues bearer tokens.
type TokenSigner interface {
	Sign(userID string) (string, error)
}

// Deliverer dispatches plaintext codes and reset links; the service never
// transmits anything itself.
type Deliverer interface {
	DeliverCode(ctx context.Context, u *domain.User, code string) error
	DeliverResetLink(ctx context.Context, u *domain.User, resetURL string) error
}

// GoogleVerifier validates Google ID tokens.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Payload, error)
}

type RegisterRequest struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*domain.User, string, error)
	GoogleAuth(ctx context.Context, idToken string) (*domain.User, string, error)
	VerifyEmail(ctx context.Context, userID, code string) (*domain.User, error)
	ResendVerificationCode(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// ServiceDeps wires the service's collaborators and policy knobs.
type ServiceDeps struct {
	Users     UserStore
	Hasher    Hasher
	Tokens    TokenSigner
	Deliverer Deliverer
	Google    GoogleVerifier // nil when Google sign-in is not configured

	PasswordCost   int
	CodeCost       int
	ResendCooldown time.Duration
	ResetCooldown  time.Duration
	AppURL         string
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	return &service{deps: deps}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*domain.User, string, error) {
	if _, err := s.deps.Users.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	passwordHash, err := s.deps.Hasher.Hash(ctx, req.Password, s.deps.PasswordCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	code, err := generateCode()
	if err != nil {
		return nil, "", err
	}
	codeHash, err := s.deps.Hasher.Hash(ctx, code, s.deps.CodeCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash verification code: %w", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:               id.New(),
		Email:                req.Email,
		Name:                 req.Name,
		Phone:                req.Phone,
		PasswordHash:         passwordHash,
		AuthProvider:         "local",
		VerificationCodeHash: &codeHash,
		LastCodeSentAt:       &now,
		Preferences: domain.Preferences{
			EmailNotification: true,
			PushNotification:  true,
			Theme:             "light",
		},
		Level:       1,
		LoginStreak: 1,
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deps.Users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	if err := s.deps.Deliverer.DeliverCode(ctx, u, code); err != nil {
		slog.Warn("could not deliver verification code", "user_id", u.UserID, "err", err)
	}

	bearer, err := s.deps.Tokens.Sign(u.UserID)
	if err != nil {
		return nil, "", err
	}
	return u, bearer, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	u, err := s.deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	ok, err := s.deps.Hasher.Verify(ctx, req.Password, u.PasswordHash)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	now := time.Now().UTC()
	u.LoginStreak = nextStreak(u.LastLoginAt, u.LoginStreak, now)
	u.LastLoginAt = &now
	if err := s.deps.Users.Update(ctx, u.UserID, map[string]interface{}{
		"login_streak":  u.LoginStreak,
		"last_login_at": now,
	}); err != nil {
		slog.Warn("could not update login streak", "user_id", u.UserID, "err", err)
	}

	bearer, err := s.deps.Tokens.Sign(u.UserID)
	if err != nil {
		return nil, "", err
	}
	return u, bearer, nil
}

func (s *service) GoogleAuth(ctx context.Context, idToken string) (*domain.User, string, error) {
	if s.deps.Google == nil {
		return nil, "", fmt.Errorf("google sign-in not configured: %w", domain.ErrBadRequest)
	}
	payload, err := s.deps.Google.Verify(ctx, idToken)
	if err != nil {
		return nil, "", err
	}

	u, err := s.deps.Users.GetByGoogleSub(ctx, payload.Sub)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.linkOrCreateGoogleUser(ctx, payload)
	}
	if err != nil {
		return nil, "", err
	}

	bearer, err := s.deps.Tokens.Sign(u.UserID)
	if err != nil {
		return nil, "", err
	}
	return u, bearer, nil
}

func (s *service) linkOrCreateGoogleUser(ctx context.Context, payload *google.Payload) (*domain.User, error) {
	if existing, err := s.deps.Users.GetByEmail(ctx, payload.Email); err == nil {
		if err := s.deps.Users.Update(ctx, existing.UserID, map[string]interface{}{
			"google_sub":    payload.Sub,
			"auth_provider": "google",
		}); err != nil {
			return nil, err
		}
		existing.GoogleSub = payload.Sub
		existing.AuthProvider = "google"
		return existing, nil
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        payload.Email,
		Name:         payload.Name,
		AuthProvider: "google",
		GoogleSub:    payload.Sub,
		Preferences: domain.Preferences{
			EmailNotification: true,
			PushNotification:  true,
			Theme:             "light",
		},
		Level:       1,
		LoginStreak: 1,
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Google has already verified the address; skip the code flow entirely.
	if payload.EmailVerified {
		u.EmailVerifiedAt = &now
	}
	if err := s.deps.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) VerifyEmail(ctx context.Context, userID, code string) (*domain.User, error) {
	u, err := s.deps.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Verified() {
		return nil, fmt.Errorf("email already verified: %w", domain.ErrBadRequest)
	}
	if u.VerificationCodeHash == nil {
		return nil, fmt.Errorf("no verification code outstanding: %w", domain.ErrBadRequest)
	}

	ok, err := s.deps.Hasher.Verify(ctx, code, *u.VerificationCodeHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCode
	}

	now := time.Now().UTC()
	if err := s.deps.Users.Update(ctx, u.UserID, map[string]interface{}{
		"email_verified_at":      now,
		"verification_code_hash": nil,
	}); err != nil {
		return nil, err
	}
	u.EmailVerifiedAt = &now
	u.VerificationCodeHash = nil
	return u, nil
}

func (s *service) ResendVerificationCode(ctx context.Context, userID string) error {
	u, err := s.deps.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.Verified() {
		return fmt.Errorf("email already verified: %w", domain.ErrBadRequest)
	}
	if !resend.CanResend(u.LastCodeSentAt, s.deps.ResendCooldown) {
		return &domain.RateLimitError{RetryAfter: resend.RemainingWait(u.LastCodeSentAt, s.deps.ResendCooldown)}
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	codeHash, err := s.deps.Hasher.Hash(ctx, code, s.deps.CodeCost)
	if err != nil {
		return fmt.Errorf("hash verification code: %w", err)
	}

	now := time.Now().UTC()
	err = s.deps.Users.ClaimCodeSend(ctx, u.UserID, u.LastCodeSentAt, map[string]interface{}{
		"verification_code_hash": codeHash,
		"last_code_sent_at":      now,
	})
	if errors.Is(err, domain.ErrConflict) {
		// A concurrent resend won the slot between our read and write.
		fresh, gerr := s.deps.Users.Get(ctx, u.UserID)
		if gerr != nil {
			return gerr
		}
		return &domain.RateLimitError{RetryAfter: resend.RemainingWait(fresh.LastCodeSentAt, s.deps.ResendCooldown)}
	}
	if err != nil {
		return err
	}

	u.VerificationCodeHash = &codeHash
	u.LastCodeSentAt = &now
	if err := s.deps.Deliverer.DeliverCode(ctx, u, code); err != nil {
		slog.Warn("could not deliver verification code", "user_id", u.UserID, "err", err)
	}
	return nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if !resend.CanResend(u.LastResetRequestAt, s.deps.ResetCooldown) {
		return &domain.RateLimitError{RetryAfter: resend.RemainingWait(u.LastResetRequestAt, s.deps.ResetCooldown)}
	}

	tok, err := pkgtoken.NewResetToken()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := s.deps.Users.Update(ctx, u.UserID, map[string]interface{}{
		"reset_password_token":   tok,
		"reset_password_expires": now.Add(time.Hour),
		"last_reset_request_at":  now,
	}); err != nil {
		return err
	}

	if err := s.deps.Deliverer.DeliverResetLink(ctx, u, s.deps.AppURL+"/reset?token="+tok); err != nil {
		slog.Warn("could not deliver reset link", "user_id", u.UserID, "err", err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	u, err := s.deps.Users.GetByResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token: %w", domain.ErrBadRequest)
	}
	if u.ResetPasswordExpires == nil || time.Now().After(*u.ResetPasswordExpires) {
		return fmt.Errorf("invalid or expired reset token: %w", domain.ErrBadRequest)
	}

	passwordHash, err := s.deps.Hasher.Hash(ctx, newPassword, s.deps.PasswordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.deps.Users.Update(ctx, u.UserID, map[string]interface{}{
		"password_hash":          passwordHash,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
	})
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.deps.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.deps.Hasher.Verify(ctx, currentPassword, u.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}

	passwordHash, err := s.deps.Hasher.Hash(ctx, newPassword, s.deps.PasswordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.deps.Users.Update(ctx, userID, map[string]interface{}{
		"password_hash": passwordHash,
	})
}

// generateCode returns a random 6-digit verification code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// nextStreak computes the login streak after a login at now.
func nextStreak(lastLogin *time.Time, streak int, now time.Time) int {
	if lastLogin == nil || streak < 1 {
		return 1
	}
	last := lastLogin.UTC()
	days := int(now.Truncate(24*time.Hour).Sub(last.Truncate(24*time.Hour)) / (24 * time.Hour))
	switch days {
	case 0:
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}
