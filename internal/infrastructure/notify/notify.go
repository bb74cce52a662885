// Package notify dispatches verification codes and password-reset links to
// users. The core only generates and validates codes; this package owns the
// outbound channels (SMTP always, SNS SMS when the user has a phone number).
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/learnza/learnza-api/internal/domain"
	"github.com/learnza/learnza-api/internal/infrastructure/smtp"
	"github.com/learnza/learnza-api/internal/infrastructure/sns"
)

// Notifier composes the email and SMS channels.
type Notifier struct {
	mailer smtp.Mailer
	sms    sns.SMSSender
}

// New creates a Notifier. sms may be nil when SNS is not configured; codes
// then go out by email only.
func New(mailer smtp.Mailer, sms sns.SMSSender) *Notifier {
	return &Notifier{mailer: mailer, sms: sms}
}

// DeliverCode sends the plaintext verification code to the user. Email is the
// primary channel; SMS is best-effort and never fails the request.
func (n *Notifier) DeliverCode(ctx context.Context, u *domain.User, code string) error {
	body := emailTemplate("Verify your Learnza email", fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Use the verification code below to verify your email address:</p>
<div class="code">%s</div>
<p class="muted">If you did not request this, you can safely ignore this email.</p>`,
		u.Name, code))
	if err := n.mailer.SendEmail(u.Email, "Verify your Learnza email", body); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	if n.sms != nil && u.Phone != nil {
		if err := n.sms.SendSMS(ctx, *u.Phone, "Your Learnza verification code: "+code); err != nil {
			slog.Warn("could not send verification SMS", "user_id", u.UserID, "err", err)
		}
	}
	return nil
}

// DeliverResetLink sends the password-reset URL to the user's email address.
func (n *Notifier) DeliverResetLink(_ context.Context, u *domain.User, resetURL string) error {
	body := emailTemplate("Reset your Learnza password", fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We received a request to reset your password. Click the link below to proceed:</p>
<p><a class="btn" href="%s" target="_blank" rel="noopener">Reset password</a></p>
<p class="muted">If you did not request a password reset, you can safely ignore this message.</p>`,
		u.Name, resetURL))
	if err := n.mailer.SendEmail(u.Email, "Reset your Learnza password", body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func emailTemplate(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>%s</title>
  <style>
    body { background:#f6f8fb; margin:0; font-family:-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif; color:#0f172a; }
    .card { max-width:560px; margin:32px auto; background:#ffffff; border-radius:12px; overflow:hidden; }
    .header { padding:20px 24px; background:#0f766e; color:#ffffff; }
    .content { padding:24px; line-height:1.6; }
    .code { display:inline-block; background:#0f172a; color:#ffffff; padding:12px 16px; border-radius:10px; font-size:24px; letter-spacing:6px; font-weight:700; }
    .btn { display:inline-block; background:#0f766e; color:#ffffff !important; text-decoration:none; padding:12px 18px; border-radius:10px; font-weight:600; }
    .muted { color:#64748b; font-size:13px; }
    .footer { text-align:center; color:#64748b; font-size:12px; padding:16px; }
  </style>
</head>
<body>
  <div class="card">
    <div class="header"><h1>%s</h1></div>
    <div class="content">%s</div>
  </div>
  <div class="footer">You are receiving this email because you have an account with Learnza.</div>
</body>
</html>`, title, title, content)
}
