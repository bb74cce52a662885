// Package language manages the learning-language catalog.
package language

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnza/learnza-api/internal/domain"
	"github.com/learnza/learnza-api/internal/pkg/id"
)

type LanguageStore interface {
	Put(ctx context.Context, l *domain.Language) error
	GetByCode(ctx context.Context, code string) (*domain.Language, error)
	List(ctx context.Context) ([]domain.Language, error)
}

type AddLanguageRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	Region     string `json:"region"`
}

type Service interface {
	List(ctx context.Context) ([]domain.Language, error)
	Add(ctx context.Context, req AddLanguageRequest) (*domain.Language, error)
}

type service struct {
	languages LanguageStore
}

func NewService(languages LanguageStore) Service {
	return &service{languages: languages}
}

func (s *service) List(ctx context.Context) ([]domain.Language, error) {
	return s.languages.List(ctx)
}

func (s *service) Add(ctx context.Context, req AddLanguageRequest) (*domain.Language, error) {
	if _, err := s.languages.GetByCode(ctx, req.Code); err == nil {
		return nil, fmt.Errorf("language %s already exists: %w", req.Code, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	l := &domain.Language{
		LanguageID: id.New(),
		Code:       req.Code,
		Name:       req.Name,
		NativeName: req.NativeName,
		Region:     req.Region,
		Enable:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.languages.Put(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
