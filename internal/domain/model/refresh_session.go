package model

import "time"

// ユーザーにつき1行だけ（user_idのuniqueIndexで保証）
type RefreshSession struct {
	TokenID string `json:"tokenId" gorm:"type:uuid;primaryKey"`
	UserID  int64  `json:"userId" gorm:"not null;uniqueIndex"`
	// ログイン時のクライアントIP（IP固定モードの照合に使う）
	IssuingAddress string    `json:"issuingAddress"`
	ExpiresAt      time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt      time.Time `json:"createdAt"`
}
