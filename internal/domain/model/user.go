package model

import "time"

type User struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	UUID            string `gorm:"type:uuid;uniqueIndex;not null"`
	Username        string `gorm:"uniqueIndex;not null"`
	Email           string `gorm:"uniqueIndex;not null"`
	PasswordHash    string `gorm:"column:password_hash;not null"`
	PasswordVersion int    `gorm:"not null;default:0"`
	Confirmed       bool   `gorm:"not null;default:false"`
	// パスワード変更日時（ログイン失敗時のヒントに使う）
	PasswordUpdatedAt time.Time `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
