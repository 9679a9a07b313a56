package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/repository"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct {
	mock.Mock
	repository.UserRepository
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func TestValidateRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", ctx, "amy@test.com").Return(nil, repository.ErrNotFound)

		err := NewAuthValidator(users).ValidateRegister(ctx, "amy@test.com", "password1")
		assert.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		err := NewAuthValidator(new(mockUserRepo)).ValidateRegister(ctx, "", "password1")
		assert.ErrorIs(t, err, usecase.ErrMissingRequiredField)
	})

	t.Run("bad email", func(t *testing.T) {
		v := NewAuthValidator(new(mockUserRepo))
		for _, email := range []string{"amy", "amy@test", "Amy <amy@test.com>"} {
			assert.ErrorIs(t, v.ValidateRegister(ctx, email, "password1"), usecase.ErrInvalidInput, email)
		}
	})

	t.Run("short password", func(t *testing.T) {
		err := NewAuthValidator(new(mockUserRepo)).ValidateRegister(ctx, "amy@test.com", "short")
		assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	})

	t.Run("taken", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", ctx, "amy@test.com").Return(&model.User{ID: "u1"}, nil)

		err := NewAuthValidator(users).ValidateRegister(ctx, "amy@test.com", "password1")
		assert.ErrorIs(t, err, usecase.ErrEmailTaken)
	})

	t.Run("db error", func(t *testing.T) {
		users := new(mockUserRepo)
		boom := errors.New("boom")
		users.On("FindByEmail", ctx, "amy@test.com").Return(nil, boom)

		err := NewAuthValidator(users).ValidateRegister(ctx, "amy@test.com", "password1")
		assert.ErrorIs(t, err, boom)
	})
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator(new(mockUserRepo))
	assert.NoError(t, v.ValidateLogin(context.Background(), "amy@test.com", "x"))
	assert.ErrorIs(t, v.ValidateLogin(context.Background(), "amy@test.com", ""), usecase.ErrMissingRequiredField)
}
