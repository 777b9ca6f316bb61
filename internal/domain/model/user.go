package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser     Role = "USER"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// モデレーション権限（承認・却下・ユーザー停止）を持つロールか
func (r Role) IsReviewer() bool {
	return r == RoleEmployee || r == RoleAdmin
}

type User struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Pseudo             string `gorm:"type:varchar(50);not null;uniqueIndex:idx_users_lower_pseudo,expression:LOWER(pseudo)" json:"pseudo"`
	Email              string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash       string `gorm:"column:password_hash;not null" json:"-"`
	Role               Role   `gorm:"type:varchar(20);not null;default:'USER';index" json:"role"`
	IsSuspended        bool   `gorm:"not null;default:false" json:"is_suspended"`
	SuspensionReason   string `gorm:"type:varchar(500)" json:"suspension_reason,omitempty"`
	MustChangePassword bool   `gorm:"not null;default:false" json:"must_change_password"`
	TokenVersion       int    `gorm:"not null;default:0" json:"-"`

	// パスワード再設定トークン（ハッシュのみ保存）
	ResetTokenHash      string     `gorm:"type:varchar(64);index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// NormalizeEmail はメールアドレスを比較用に正規化する（前後空白除去 + 小文字化）。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
