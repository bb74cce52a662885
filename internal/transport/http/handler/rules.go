package handler

import "github.com/learnza/learnza-api/internal/rules"

// Per-endpoint rule sets, compiled once at startup. A typo in any chain
// panics before the server starts listening.
var (
	RegisterRules = rules.MustCompile(
		rules.FieldDef{Field: "email", Chain: "required|email"},
		rules.FieldDef{Field: "name", Chain: "required|string|min:2|max:50"},
		rules.FieldDef{Field: "password", Chain: "required|string|min:6|max:50"},
	)

	LoginRules = rules.MustCompile(
		rules.FieldDef{Field: "email", Chain: "required|email"},
		rules.FieldDef{Field: "password", Chain: "required|string"},
	)

	GoogleAuthRules = rules.MustCompile(
		rules.FieldDef{Field: "token", Chain: "required|string"},
	)

	VerifyEmailRules = rules.MustCompile(
		rules.FieldDef{Field: "code", Chain: "required|string|min:6|max:6"},
	)

	ForgotPasswordRules = rules.MustCompile(
		rules.FieldDef{Field: "email", Chain: "required|email"},
	)

	ResetPasswordRules = rules.MustCompile(
		rules.FieldDef{Field: "token", Chain: "required|string"},
		rules.FieldDef{Field: "password", Chain: "required|string|min:6|max:50"},
	)

	ChangePasswordRules = rules.MustCompile(
		rules.FieldDef{Field: "currentPassword", Chain: "required|string"},
		rules.FieldDef{Field: "newPassword", Chain: "required|string|min:6|max:50"},
	)

	UpdateProfileRules = rules.MustCompile(
		rules.FieldDef{Field: "name", Chain: "string|min:2|max:50"},
	)

	UpdatePreferencesRules = rules.MustCompile(
		rules.FieldDef{Field: "emailNotification", Chain: "boolean"},
		rules.FieldDef{Field: "pushNotification", Chain: "boolean"},
		rules.FieldDef{Field: "theme", Chain: "string|in:light,dark"},
		rules.FieldDef{Field: "timezone", Chain: "string"},
	)

	UpdateLanguageRules = rules.MustCompile(
		rules.FieldDef{Field: "languageCode", Chain: "required|string|in:en,yo,ha,ig"},
	)

	UpdateAccessibilityRules = rules.MustCompile(
		rules.FieldDef{Field: "accessibilityNeeds", Chain: "required"},
	)

	UpdateAddressRules = rules.MustCompile(
		rules.FieldDef{Field: "address", Chain: "required|string|min:42|max:42"},
	)

	AddLanguageRules = rules.MustCompile(
		rules.FieldDef{Field: "code", Chain: "required|string|min:2|max:10"},
		rules.FieldDef{Field: "name", Chain: "required|string|min:2|max:50"},
		rules.FieldDef{Field: "nativeName", Chain: "required|string|min:2|max:50"},
		rules.FieldDef{Field: "region", Chain: "required|string|min:2|max:50"},
	)
)
