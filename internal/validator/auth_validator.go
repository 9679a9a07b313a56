package validator

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/qstina/relove-website/internal/repository"
	"github.com/qstina/relove-website/internal/usecase"
)

// パスワード最低文字数
const minPasswordLen = 8

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password required", usecase.ErrMissingRequiredField)
	}

	// email形式
	if !isEmail(email) {
		return fmt.Errorf("%w: invalid email", usecase.ErrInvalidInput)
	}

	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", usecase.ErrInvalidInput, minPasswordLen)
	}

	// email重複チェック
	_, err := v.users.FindByEmail(ctx, email)
	if err == nil {
		return usecase.ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password required", usecase.ErrMissingRequiredField)
	}
	if !isEmail(email) {
		return fmt.Errorf("%w: invalid email", usecase.ErrInvalidInput)
	}
	return nil
}

// 表示名つき("Amy <amy@x.com>")は受け付けない
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}
