package model

import "time"

// リフレッシュトークン。平文は保存せず sha256 のみ持つ。
// 発行時の token_version を覚えておき、ユーザー側で上がっていたら使えない。
type RefreshToken struct {
	ID           string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       int64      `json:"user_id" gorm:"not null;index"`
	TokenHash    string     `json:"-" gorm:"type:varchar(64);not null;uniqueIndex"`
	TokenVersion int        `json:"-" gorm:"not null;default:0"`
	UserAgent    string     `json:"user_agent" gorm:"type:varchar(255)"`
	ExpiresAt    time.Time  `json:"expires_at" gorm:"not null;index"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
