package domain

import "time"

// User is the platform account record.
//
// EmailVerifiedAt, VerificationCodeHash and LastCodeSentAt together encode
// the email-verification lifecycle: all nil before the first code is issued,
// code fields set while a code is outstanding, and the code hash cleared
// (with EmailVerifiedAt stamped) once verification succeeds. Only the auth
// service writes these three fields.
//
// google_sub and reset_password_token back string GSI hash keys, so they
// carry omitempty: an index key attribute must be absent when unset, never an
// empty string or NULL.
type User struct {
	UserID               string      `json:"id" dynamodbav:"user_id"`
	Email                string      `json:"email" dynamodbav:"email"`
	Name                 string      `json:"name" dynamodbav:"name"`
	PasswordHash         string      `json:"-" dynamodbav:"password_hash"`
	Phone                *string     `json:"phone,omitempty" dynamodbav:"phone"`
	AuthProvider         string      `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub            string      `json:"-" dynamodbav:"google_sub,omitempty"`
	EmailVerifiedAt      *time.Time  `json:"email_verified_at" dynamodbav:"email_verified_at"`
	VerificationCodeHash *string     `json:"-" dynamodbav:"verification_code_hash"`
	LastCodeSentAt       *time.Time  `json:"-" dynamodbav:"last_code_sent_at"`
	ResetPasswordToken   *string     `json:"-" dynamodbav:"reset_password_token,omitempty"`
	ResetPasswordExpires *time.Time  `json:"-" dynamodbav:"reset_password_expires"`
	LastResetRequestAt   *time.Time  `json:"-" dynamodbav:"last_reset_request_at"`
	Preferences          Preferences `json:"preferences" dynamodbav:"preferences"`
	LanguageCode         string      `json:"language_code,omitempty" dynamodbav:"language_code"`
	AccessibilityNeeds   []string    `json:"accessibility_needs,omitempty" dynamodbav:"accessibility_needs"`
	WalletAddress        *string     `json:"wallet_address,omitempty" dynamodbav:"wallet_address"`
	Level                int         `json:"level" dynamodbav:"level"`
	TotalPoints          int         `json:"total_points" dynamodbav:"total_points"`
	LoginStreak          int         `json:"login_streak" dynamodbav:"login_streak"`
	LastLoginAt          *time.Time  `json:"last_login" dynamodbav:"last_login_at"`
	CreatedAt            time.Time   `json:"created" dynamodbav:"created_at"`
	UpdatedAt            time.Time   `json:"updated" dynamodbav:"updated_at"`
}

// Preferences holds per-user notification and display settings.
type Preferences struct {
	EmailNotification bool   `json:"emailNotification" dynamodbav:"email_notification"`
	PushNotification  bool   `json:"pushNotification" dynamodbav:"push_notification"`
	Theme             string `json:"theme,omitempty" dynamodbav:"theme"` // "light" | "dark"
	Timezone          string `json:"timezone,omitempty" dynamodbav:"timezone"`
}

// Verified reports whether the user completed email verification.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}
