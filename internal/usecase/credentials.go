package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const MinPasswordLength = 8

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// 一時パスワードや再設定トークンの元になるランダム文字列
type SecretGenerator interface {
	NewSecret() string
}

type UUIDSecretGenerator struct{}

func (UUIDSecretGenerator) NewSecret() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return Validation("password must be at least 8 characters")
	}
	return nil
}

// DerivePseudo はメールアドレスのローカル部から表示名を作る。
// "Jean.Dupont@corp.io" -> "jean-dupont"
func DerivePseudo(email string) string {
	local := email
	if i := strings.LastIndex(email, "@"); i >= 0 {
		local = email[:i]
	}
	p := slug.Make(local)
	if utf8.RuneCountInString(p) > 50 {
		p = string([]rune(p)[:50])
	}
	return p
}
