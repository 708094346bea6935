package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("session not found")

// user_idのunique制約違反
var ErrSessionExists = errors.New("session already exists")

// リフレッシュセッションの保存・取得・削除
type SessionRepository interface {
	// 既に行があればErrSessionExists（呼び出し側は既存を読みに行く）
	Insert(ctx context.Context, session *model.RefreshSession) error
	FindByTokenID(ctx context.Context, tokenID string) (*model.RefreshSession, error)
	FindByUserID(ctx context.Context, userID int64) (*model.RefreshSession, error)
	Delete(ctx context.Context, tokenID string) error
}
