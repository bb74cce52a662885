package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/learnza/learnza-api/internal/domain"
	"github.com/learnza/learnza-api/internal/infrastructure/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error) {
	args := m.Called(ctx, sub)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) ClaimCodeSend(ctx context.Context, userID string, prevSentAt *time.Time, updates map[string]interface{}) error {
	return m.Called(ctx, userID, prevSentAt, updates).Error(0)
}

type mockDeliverer struct{ mock.Mock }

func (m *mockDeliverer) DeliverCode(ctx context.Context, u *domain.User, code string) error {
	return m.Called(ctx, u, code).Error(0)
}
func (m *mockDeliverer) DeliverResetLink(ctx context.Context, u *domain.User, resetURL string) error {
	return m.Called(ctx, u, resetURL).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

type mockGoogle struct{ mock.Mock }

func (m *mockGoogle) Verify(ctx context.Context, idToken string) (*google.Payload, error) {
	args := m.Called(ctx, idToken)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeHasher is deterministic so tests can predict digests.
type fakeHasher struct{}

func (fakeHasher) Hash(_ context.Context, secret string, _ int) (string, error) {
	return "h:" + secret, nil
}
func (fakeHasher) Verify(_ context.Context, secret, digest string) (bool, error) {
	return digest == "h:"+secret, nil
}

// --- builder ---

func newTestService(us *mockUserStore, dl *mockDeliverer, sg *mockSigner, gv GoogleVerifier) Service {
	return NewService(ServiceDeps{
		Users:          us,
		Hasher:         fakeHasher{},
		Tokens:         sg,
		Deliverer:      dl,
		Google:         gv,
		PasswordCost:   10,
		CodeCost:       5,
		ResendCooldown: 3 * time.Minute,
		ResetCooldown:  5 * time.Minute,
		AppURL:         "https://learnza.net.ng",
	})
}

func timePtr(t time.Time) *time.Time { return &t }
func strPtr(s string) *string        { return &s }

// --- Register ---

func TestRegister_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	dl := &mockDeliverer{}
	sg := &mockSigner{}

	us.On("GetByEmail", mock.Anything, "a@b.co").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	dl.On("DeliverCode", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)
	sg.On("Sign", mock.AnythingOfType("string")).Return("bearer-token", nil)

	svc := newTestService(us, dl, sg, nil)
	u, bearer, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "a@b.co",
		Name:     "Ada",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", bearer)
	assert.Equal(t, "h:secret1", u.PasswordHash)
	assert.False(t, u.Verified())
	require.NotNil(t, u.VerificationCodeHash)
	require.NotNil(t, u.LastCodeSentAt)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, 1, u.LoginStreak)
	us.AssertExpectations(t)
	dl.AssertExpectations(t)
}

func TestRegister_DeliveryFailureDoesNotFailRegistration(t *testing.T) {
	us := &mockUserStore{}
	dl := &mockDeliverer{}
	sg := &mockSigner{}

	us.On("GetByEmail", mock.Anything, "a@b.co").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.Anything).Return(nil)
	dl.On("DeliverCode", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	sg.On("Sign", mock.Anything).Return("bearer-token", nil)

	svc := newTestService(us, dl, sg, nil)
	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "a@b.co", Name: "Ada", Password: "secret1",
	})
	require.NoError(t, err)
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.co").Return(&domain.User{UserID: "u1"}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "a@b.co", Name: "Ada", Password: "secret1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_ConcurrentDuplicateLosesAtCreate(t *testing.T) {
	us := &mockUserStore{}
	dl := &mockDeliverer{}

	// The email check passes because the rival registration lands between the
	// read and the write; the atomic create is what reports the conflict.
	us.On("GetByEmail", mock.Anything, "a@b.co").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	svc := newTestService(us, dl, &mockSigner{}, nil)
	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "a@b.co", Name: "Ada", Password: "secret1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	dl.AssertNotCalled(t, "DeliverCode", mock.Anything, mock.Anything, mock.Anything)
}

// --- Login ---

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.co").Return(&domain.User{
		UserID:       "u1",
		PasswordHash: "h:right",
	}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.co").Return(nil, domain.ErrNotFound)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "x@x.co", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_ConsecutiveDayExtendsStreak(t *testing.T) {
	us := &mockUserStore{}
	sg := &mockSigner{}
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	us.On("GetByEmail", mock.Anything, "a@b.co").Return(&domain.User{
		UserID:       "u1",
		PasswordHash: "h:secret1",
		LoginStreak:  3,
		LastLoginAt:  &yesterday,
	}, nil)
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)
	sg.On("Sign", "u1").Return("tok", nil)

	svc := newTestService(us, &mockDeliverer{}, sg, nil)
	u, _, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, 4, u.LoginStreak)
}

// --- GoogleAuth ---

func TestGoogleAuth_NotConfigured(t *testing.T) {
	svc := newTestService(&mockUserStore{}, &mockDeliverer{}, &mockSigner{}, nil)
	_, _, err := svc.GoogleAuth(context.Background(), "id-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestGoogleAuth_CreatesPreVerifiedUser(t *testing.T) {
	us := &mockUserStore{}
	gv := &mockGoogle{}
	sg := &mockSigner{}

	gv.On("Verify", mock.Anything, "id-token").Return(&google.Payload{
		Sub: "sub-1", Email: "g@b.co", EmailVerified: true, Name: "Grace",
	}, nil)
	us.On("GetByGoogleSub", mock.Anything, "sub-1").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "g@b.co").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	sg.On("Sign", mock.Anything).Return("tok", nil)

	svc := newTestService(us, &mockDeliverer{}, sg, gv)
	u, _, err := svc.GoogleAuth(context.Background(), "id-token")
	require.NoError(t, err)
	assert.True(t, u.Verified())
	assert.Equal(t, "google", u.AuthProvider)
	assert.Nil(t, u.VerificationCodeHash)
}

func TestGoogleAuth_LinksExistingLocalAccount(t *testing.T) {
	us := &mockUserStore{}
	gv := &mockGoogle{}
	sg := &mockSigner{}

	gv.On("Verify", mock.Anything, "id-token").Return(&google.Payload{
		Sub: "sub-1", Email: "a@b.co", EmailVerified: true, Name: "Ada",
	}, nil)
	us.On("GetByGoogleSub", mock.Anything, "sub-1").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "a@b.co").Return(&domain.User{UserID: "u1", Email: "a@b.co"}, nil)
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)
	sg.On("Sign", "u1").Return("tok", nil)

	svc := newTestService(us, &mockDeliverer{}, sg, gv)
	u, _, err := svc.GoogleAuth(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Equal(t, "sub-1", u.GoogleSub)
	us.AssertExpectations(t)
}

// --- VerifyEmail ---

func TestVerifyEmail_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:               "u1",
		VerificationCodeHash: strPtr("h:123456"),
	}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		_, hasTS := m["email_verified_at"]
		v, hasHash := m["verification_code_hash"]
		return hasTS && hasHash && v == nil
	})).Return(nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	u, err := svc.VerifyEmail(context.Background(), "u1", "123456")
	require.NoError(t, err)
	assert.True(t, u.Verified())
	assert.Nil(t, u.VerificationCodeHash)
	us.AssertExpectations(t)
}

func TestVerifyEmail_WrongCodeLeavesStateUntouched(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:               "u1",
		VerificationCodeHash: strPtr("h:123456"),
	}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	_, err := svc.VerifyEmail(context.Background(), "u1", "654321")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyEmail_AlreadyVerified(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:          "u1",
		EmailVerifiedAt: timePtr(time.Now()),
	}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	_, err := svc.VerifyEmail(context.Background(), "u1", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestVerifyEmail_NoOutstandingCode(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	_, err := svc.VerifyEmail(context.Background(), "u1", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- ResendVerificationCode ---

func TestResend_WithinCooldown(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:               "u1",
		VerificationCodeHash: strPtr("h:123456"),
		LastCodeSentAt:       timePtr(time.Now().Add(-time.Minute)),
	}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	err := svc.ResendVerificationCode(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))

	var rle *domain.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Greater(t, rle.RetryAfter, time.Duration(0))
	assert.Equal(t, time.Duration(0), rle.RetryAfter%time.Second)
	us.AssertNotCalled(t, "ClaimCodeSend", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResend_HappyPathRotatesCode(t *testing.T) {
	us := &mockUserStore{}
	dl := &mockDeliverer{}
	lastSent := time.Now().Add(-10 * time.Minute)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:               "u1",
		Email:                "a@b.co",
		VerificationCodeHash: strPtr("h:old"),
		LastCodeSentAt:       &lastSent,
	}, nil)
	us.On("ClaimCodeSend", mock.Anything, "u1", mock.Anything, mock.MatchedBy(func(m map[string]interface{}) bool {
		_, hasHash := m["verification_code_hash"]
		_, hasTS := m["last_code_sent_at"]
		return hasHash && hasTS
	})).Return(nil)
	dl.On("DeliverCode", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)

	svc := newTestService(us, dl, &mockSigner{}, nil)
	err := svc.ResendVerificationCode(context.Background(), "u1")
	require.NoError(t, err)
	us.AssertExpectations(t)
	dl.AssertExpectations(t)
}

func TestResend_AlreadyVerified(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:          "u1",
		EmailVerifiedAt: timePtr(time.Now()),
	}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	err := svc.ResendVerificationCode(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestResend_ConcurrentClaimLoses(t *testing.T) {
	us := &mockUserStore{}
	stale := time.Now().Add(-10 * time.Minute)
	fresh := time.Now().Add(-time.Second)

	// First read sees a stale send time, the conditional write loses, the
	// re-read sees the winner's timestamp.
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:         "u1",
		LastCodeSentAt: &stale,
	}, nil).Once()
	us.On("ClaimCodeSend", mock.Anything, "u1", mock.Anything, mock.Anything).Return(domain.ErrConflict)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:         "u1",
		LastCodeSentAt: &fresh,
	}, nil).Once()

	dl := &mockDeliverer{}
	svc := newTestService(us, dl, &mockSigner{}, nil)
	err := svc.ResendVerificationCode(context.Background(), "u1")
	require.Error(t, err)

	var rle *domain.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Greater(t, rle.RetryAfter, time.Duration(0))
	dl.AssertNotCalled(t, "DeliverCode", mock.Anything, mock.Anything, mock.Anything)
}

// --- ForgotPassword / ResetPassword / ChangePassword ---

func TestForgotPassword_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	dl := &mockDeliverer{}
	us.On("GetByEmail", mock.Anything, "a@b.co").Return(&domain.User{UserID: "u1", Email: "a@b.co"}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		_, hasTok := m["reset_password_token"]
		_, hasExp := m["reset_password_expires"]
		return hasTok && hasExp
	})).Return(nil)
	dl.On("DeliverResetLink", mock.Anything, mock.Anything, mock.MatchedBy(func(url string) bool {
		return len(url) > len("https://learnza.net.ng/reset?token=")
	})).Return(nil)

	svc := newTestService(us, dl, &mockSigner{}, nil)
	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.co"))
	us.AssertExpectations(t)
	dl.AssertExpectations(t)
}

func TestForgotPassword_WithinCooldown(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.co").Return(&domain.User{
		UserID:             "u1",
		LastResetRequestAt: timePtr(time.Now().Add(-time.Minute)),
	}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	err := svc.ForgotPassword(context.Background(), "a@b.co")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByResetToken", mock.Anything, "tok").Return(&domain.User{
		UserID:               "u1",
		ResetPasswordExpires: timePtr(time.Now().Add(-time.Minute)),
	}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	err := svc.ResetPassword(context.Background(), "tok", "newpass1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_HappyPathClearsToken(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByResetToken", mock.Anything, "tok").Return(&domain.User{
		UserID:               "u1",
		ResetPasswordExpires: timePtr(time.Now().Add(time.Hour)),
	}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		return m["password_hash"] == "h:newpass1" &&
			m["reset_password_token"] == nil &&
			m["reset_password_expires"] == nil
	})).Return(nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	require.NoError(t, svc.ResetPassword(context.Background(), "tok", "newpass1"))
	us.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:       "u1",
		PasswordHash: "h:right",
	}, nil)

	svc := newTestService(us, &mockDeliverer{}, &mockSigner{}, nil)
	err := svc.ChangePassword(context.Background(), "u1", "wrong", "newpass1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- nextStreak ---

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, nextStreak(nil, 0, now))
	assert.Equal(t, 5, nextStreak(timePtr(now.Add(-2*time.Hour)), 5, now), "same day keeps streak")
	assert.Equal(t, 6, nextStreak(timePtr(now.Add(-24*time.Hour)), 5, now), "next day extends")
	assert.Equal(t, 1, nextStreak(timePtr(now.Add(-72*time.Hour)), 5, now), "gap resets")
}
