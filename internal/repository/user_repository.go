package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// email/usernameの重複
var ErrUserExists = errors.New("user already exists")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（重複はErrUserExists）
	Create(ctx context.Context, user *model.User) error
	// UUIDからユーザーを1件取得する。
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// usernameまたはemailで1件取得する（ログイン用）。
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	// ユーザー情報の更新=>確認フラグ・パスワード・バージョンの変更など
	Update(ctx context.Context, user *model.User) error
}
