package language

import (
	"context"
	"errors"
	"testing"

	"github.com/learnza/learnza-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLanguageStore struct{ mock.Mock }

func (m *mockLanguageStore) Put(ctx context.Context, l *domain.Language) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockLanguageStore) GetByCode(ctx context.Context, code string) (*domain.Language, error) {
	args := m.Called(ctx, code)
	if l, _ := args.Get(0).(*domain.Language); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockLanguageStore) List(ctx context.Context) ([]domain.Language, error) {
	args := m.Called(ctx)
	if l, _ := args.Get(0).([]domain.Language); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAdd_DuplicateCode(t *testing.T) {
	ls := &mockLanguageStore{}
	ls.On("GetByCode", mock.Anything, "yo").Return(&domain.Language{Code: "yo"}, nil)

	svc := NewService(ls)
	_, err := svc.Add(context.Background(), AddLanguageRequest{Code: "yo", Name: "Yoruba"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	ls.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestAdd_HappyPath(t *testing.T) {
	ls := &mockLanguageStore{}
	ls.On("GetByCode", mock.Anything, "ha").Return(nil, domain.ErrNotFound)
	ls.On("Put", mock.Anything, mock.AnythingOfType("*domain.Language")).Return(nil)

	svc := NewService(ls)
	l, err := svc.Add(context.Background(), AddLanguageRequest{
		Code: "ha", Name: "Hausa", NativeName: "Harshen Hausa", Region: "West Africa",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, l.LanguageID)
	assert.True(t, l.Enable)
	ls.AssertExpectations(t)
}

func TestList(t *testing.T) {
	ls := &mockLanguageStore{}
	ls.On("List", mock.Anything).Return([]domain.Language{{Code: "en"}, {Code: "yo"}}, nil)

	svc := NewService(ls)
	langs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, langs, 2)
}
