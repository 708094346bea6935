package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"

	"gorm.io/gorm"
)

type sessionGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewSessionGormRepository(db *gorm.DB) domainrepo.SessionRepository {
	return &sessionGormRepository{db: db}
}

// セッションを保存します。
// user_idのunique制約に当たったらErrSessionExists。
// 同時ログインの片方はこれを受けて既存行を読みに行く。
func (r *sessionGormRepository) Insert(ctx context.Context, session *model.RefreshSession) error {
	//タイムアウトやキャンセルをDB処理に伝える
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		if isUniqueViolation(err) {
			return domainrepo.ErrSessionExists
		}
		return err
	}
	return nil
}

// token_idで1件検索します。
func (r *sessionGormRepository) FindByTokenID(ctx context.Context, tokenID string) (*model.RefreshSession, error) {
	var s model.RefreshSession

	err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		First(&s).Error

	if err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

// user_idで1件検索します（行は最大1つ）。
func (r *sessionGormRepository) FindByUserID(ctx context.Context, userID int64) (*model.RefreshSession, error) {
	var s model.RefreshSession

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

// 指定token_idのセッションを削除。
func (r *sessionGormRepository) Delete(ctx context.Context, tokenID string) error {
	result := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Delete(&model.RefreshSession{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrSessionNotFound
	}

	return nil
}
