package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"charforge/internal/domain/model"
	"charforge/internal/repository"
	"charforge/internal/usecase"

	"go.uber.org/zap"
)

// 再設定トークンの有効期限
const resetTokenTTL = time.Hour

// パスワード変更と再設定
type PasswordUsecase struct {
	userRepo repository.UserRepository
	hasher   usecase.PasswordHasher
	verifier usecase.PasswordVerifier
	secrets  usecase.SecretGenerator
	notifier usecase.Notifier
	clock    usecase.Clock
	logger   *zap.Logger
}

func NewPasswordUsecase(
	userRepo repository.UserRepository,
	hasher usecase.PasswordHasher,
	verifier usecase.PasswordVerifier,
	secrets usecase.SecretGenerator,
	notifier usecase.Notifier,
	clock usecase.Clock,
	logger *zap.Logger,
) *PasswordUsecase {
	return &PasswordUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		verifier: verifier,
		secrets:  secrets,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// ChangePassword は本人のパスワードを変える。TokenVersionを上げるので再ログインが必要。
func (u *PasswordUsecase) ChangePassword(ctx context.Context, actor model.Principal, current, next string) error {
	if !actor.Authenticated() {
		return usecase.Unauthenticated("unauthorized")
	}
	if len(next) < usecase.MinPasswordLength {
		return usecase.Validation("password must be at least 8 characters")
	}
	if current == next {
		return usecase.Validation("new password must differ from the current one")
	}

	user, err := u.userRepo.FindByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return usecase.Unauthenticated("unauthorized")
	}
	if err != nil {
		return u.dbError(err)
	}
	if !u.verifier.Verify(current, user.PasswordHash) {
		return usecase.Unauthenticated("invalid password")
	}

	hashed, err := u.hasher.Hash(next)
	if err != nil {
		return usecase.Internal("password hash failed", err)
	}
	user.PasswordHash = hashed
	user.MustChangePassword = false
	user.TokenVersion++
	if err := u.userRepo.Update(ctx, user); err != nil {
		return u.dbError(err)
	}
	return nil
}

// RequestPasswordReset は再設定トークンを発行してメールで送る。
// 未登録のメールアドレスでも成功を返す（登録有無を漏らさない）。
func (u *PasswordUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return u.dbError(err)
	}
	if user.IsSuspended {
		return nil
	}

	token := u.secrets.NewSecret()
	expiresAt := u.clock.Now().Add(resetTokenTTL)
	user.ResetTokenHash = hashResetToken(token)
	user.ResetTokenExpiresAt = &expiresAt
	if err := u.userRepo.Update(ctx, user); err != nil {
		return u.dbError(err)
	}

	to := usecase.Recipient{Email: user.Email, Name: user.Pseudo}
	if err := u.notifier.PasswordReset(ctx, to, token); err != nil {
		u.logger.Warn("notification failed",
			zap.String("notification.kind", string(usecase.NotifyPasswordReset)),
			zap.String("recipient", to.Email),
			zap.Error(err),
		)
	}
	return nil
}

// ConfirmPasswordReset はトークンを使い切って新しいパスワードを設定する。
func (u *PasswordUsecase) ConfirmPasswordReset(ctx context.Context, token, next string) error {
	if token == "" {
		return usecase.Validation("invalid or expired token")
	}
	if len(next) < usecase.MinPasswordLength {
		return usecase.Validation("password must be at least 8 characters")
	}

	user, err := u.userRepo.FindByResetTokenHash(ctx, hashResetToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return usecase.Validation("invalid or expired token")
	}
	if err != nil {
		return u.dbError(err)
	}
	if user.ResetTokenExpiresAt == nil || !u.clock.Now().Before(*user.ResetTokenExpiresAt) {
		return usecase.Validation("invalid or expired token")
	}

	hashed, err := u.hasher.Hash(next)
	if err != nil {
		return usecase.Internal("password hash failed", err)
	}
	user.PasswordHash = hashed
	user.MustChangePassword = false
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	user.TokenVersion++
	if err := u.userRepo.Update(ctx, user); err != nil {
		return u.dbError(err)
	}
	return nil
}

func (u *PasswordUsecase) dbError(err error) error {
	u.logger.Error("password flow failed", zap.Error(err))
	return usecase.Internal("db error", err)
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
