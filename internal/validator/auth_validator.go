package validator

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"app/internal/repository"
	"app/internal/usecase"
)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)

	// 必須チェック
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "All fields are required")
	}

	// email形式
	if !isEmailLike(in.Email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email format")
	}

	// 確認用と一致するか
	if in.Password != in.ConfirmPassword {
		return usecase.NewHTTPError(http.StatusBadRequest, "Passwords do not match")
	}

	// email重複チェック（DBが必要）
	existing, err := v.users.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "Email already in use")
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return usecase.NewHTTPErrorFrom(http.StatusInternalServerError, "Database error", err)
	}

	return nil
}

// サインインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}
