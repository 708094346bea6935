package validator

import (
	"context"
	"regexp"
	"strings"

	"app/internal/usecase"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateSignUp(ctx context.Context, username, email, pass, passConfirm string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	// 必須チェック
	if username == "" || email == "" || pass == "" {
		return badRequest("username, email and password are required")
	}

	if len(username) < 3 || len(username) > 32 {
		return badRequest("username must be 3-32 characters")
	}

	// email形式
	if !emailRe.MatchString(email) {
		return badRequest("invalid email format")
	}

	return v.ValidateNewPassword(pass, passConfirm)
}

// 新パスワードの検証（サインアップ・リセット共通）
func (v *authValidator) ValidateNewPassword(pass, passConfirm string) error {
	// パスワード最低文字数（MVP: 8）
	if len(pass) < 8 {
		return badRequest("password must be at least 8 characters")
	}

	// 確認用と一致しないのは入力ミス
	if pass != passConfirm {
		return badRequest("password and confirmation do not match")
	}

	return nil
}

func badRequest(msg string) error {
	return &usecase.Error{Kind: usecase.ErrBadRequest, Message: msg}
}
