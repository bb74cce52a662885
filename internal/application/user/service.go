// Package user implements profile and preference operations for
// authenticated, email-verified accounts.
package user

import (
	"context"
	"fmt"

	"github.com/learnza/learnza-api/internal/domain"
)

// UserStore is the record-store surface profile operations need.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// LanguageStore resolves catalog languages by code.
type LanguageStore interface {
	GetByCode(ctx context.Context, code string) (*domain.Language, error)
}

type UpdateProfileRequest struct {
	Name *string `json:"name"`
}

// UpdatePreferencesRequest carries a partial preference update; nil fields
// are left unchanged.
type UpdatePreferencesRequest struct {
	EmailNotification *bool   `json:"emailNotification"`
	PushNotification  *bool   `json:"pushNotification"`
	Theme             *string `json:"theme"`
	Timezone          *string `json:"timezone"`
}

type Service interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error)
	UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*domain.User, error)
	UpdateLanguage(ctx context.Context, userID, code string) (*domain.User, error)
	UpdateAccessibility(ctx context.Context, userID string, needs []string) (*domain.User, error)
	UpdateWalletAddress(ctx context.Context, userID, address string) (*domain.User, error)
}

type service struct {
	users     UserStore
	languages LanguageStore
}

func NewService(users UserStore, languages LanguageStore) Service {
	return &service{users: users, languages: languages}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return u, nil
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{"name": *req.Name}); err != nil {
		return nil, err
	}
	u.Name = *req.Name
	return u, nil
}

func (s *service) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := u.Preferences
	if req.EmailNotification != nil {
		p.EmailNotification = *req.EmailNotification
	}
	if req.PushNotification != nil {
		p.PushNotification = *req.PushNotification
	}
	if req.Theme != nil {
		p.Theme = *req.Theme
	}
	if req.Timezone != nil {
		p.Timezone = *req.Timezone
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{"preferences": p}); err != nil {
		return nil, err
	}
	u.Preferences = p
	return u, nil
}

func (s *service) UpdateLanguage(ctx context.Context, userID, code string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	// The rule chain already restricts codes, but the catalog is the source
	// of truth for what is actually offered.
	if _, err := s.languages.GetByCode(ctx, code); err != nil {
		return nil, fmt.Errorf("language %s not offered: %w", code, domain.ErrBadRequest)
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{"language_code": code}); err != nil {
		return nil, err
	}
	u.LanguageCode = code
	return u, nil
}

func (s *service) UpdateAccessibility(ctx context.Context, userID string, needs []string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{"accessibility_needs": needs}); err != nil {
		return nil, err
	}
	u.AccessibilityNeeds = needs
	return u, nil
}

func (s *service) UpdateWalletAddress(ctx context.Context, userID, address string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{"wallet_address": address}); err != nil {
		return nil, err
	}
	u.WalletAddress = &address
	return u, nil
}
