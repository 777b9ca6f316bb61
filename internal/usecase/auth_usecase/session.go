package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"charforge/internal/domain/model"
	"charforge/internal/repository"
	"charforge/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRefreshTTL はリフレッシュトークンの有効期限
const DefaultRefreshTTL = 30 * 24 * time.Hour

// SessionUsecase はリフレッシュトークンの発行・ローテーション・破棄。
// 一度使ったトークンが再び来たら盗用とみなし、そのユーザーの全トークンを消す。
type SessionUsecase struct {
	tokens repository.RefreshTokenRepository
	users  repository.UserRepository
	issuer AccessTokenIssuer
	clock  usecase.Clock
	ttl    time.Duration
	logger *zap.Logger
}

func NewSessionUsecase(
	tokens repository.RefreshTokenRepository,
	users repository.UserRepository,
	issuer AccessTokenIssuer,
	clock usecase.Clock,
	ttl time.Duration,
	logger *zap.Logger,
) *SessionUsecase {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &SessionUsecase{
		tokens: tokens,
		users:  users,
		issuer: issuer,
		clock:  clock,
		ttl:    ttl,
		logger: logger,
	}
}

// Start は新しいリフレッシュトークンを保存して平文を返す
func (u *SessionUsecase) Start(ctx context.Context, user *model.User, userAgent string) (string, error) {
	plain, hash, err := newRandomTokenAndHash()
	if err != nil {
		return "", usecase.Internal("token generation failed", err)
	}

	now := u.clock.Now()
	rt := &model.RefreshToken{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		TokenHash:    hash,
		TokenVersion: user.TokenVersion,
		UserAgent:    truncate(userAgent, 255),
		ExpiresAt:    now.Add(u.ttl),
	}
	if err := u.tokens.Create(ctx, rt); err != nil {
		u.logger.Error("refresh token save failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return "", usecase.Internal("db error", err)
	}
	return plain, nil
}

// Refresh は旧トークンを使用済みにして、アクセストークンと新しいリフレッシュトークンを返す
func (u *SessionUsecase) Refresh(ctx context.Context, refreshToken, userAgent string) (LoginOutput, error) {
	var out LoginOutput
	if refreshToken == "" {
		return out, usecase.Unauthenticated("refresh token is required")
	}

	rt, err := u.tokens.FindByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, usecase.Unauthenticated("invalid refresh token")
		}
		return out, u.dbError(err)
	}

	now := u.clock.Now()
	if rt.Expired(now) {
		_ = u.tokens.DeleteByID(ctx, rt.ID)
		return out, usecase.Unauthenticated("refresh token expired")
	}

	//使用済みが来たら replay → 全削除
	if rt.UsedAt != nil {
		u.revokeAll(ctx, rt.UserID, "refresh token reuse")
		return out, usecase.Unauthenticated("invalid refresh token")
	}
	if userAgent != "" && rt.UserAgent != "" && truncate(userAgent, 255) != rt.UserAgent {
		u.revokeAll(ctx, rt.UserID, "user agent mismatch")
		return out, usecase.Unauthenticated("invalid refresh token")
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, usecase.Unauthenticated("invalid refresh token")
		}
		return out, u.dbError(err)
	}
	if user.IsSuspended {
		return out, usecase.Forbidden("account is suspended")
	}
	// 停止・パスワード変更などで token_version が上がっている
	if user.TokenVersion != rt.TokenVersion {
		u.revokeAll(ctx, user.ID, "token version changed")
		return out, usecase.Unauthenticated("session revoked")
	}

	if err := u.tokens.MarkUsed(ctx, rt.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			u.revokeAll(ctx, user.ID, "concurrent refresh")
			return out, usecase.Unauthenticated("invalid refresh token")
		}
		return out, u.dbError(err)
	}

	token, err := issueAccessToken(u.issuer, user, now)
	if err != nil {
		return out, err
	}
	next, err := u.Start(ctx, user, userAgent)
	if err != nil {
		return out, err
	}

	out.User = *user
	out.Token = token
	out.RefreshToken = next
	return out, nil
}

// Logout は渡されたリフレッシュトークンだけを消す
func (u *SessionUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return usecase.Unauthenticated("refresh token is required")
	}
	rt, err := u.tokens.FindByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return usecase.Unauthenticated("invalid refresh token")
		}
		return u.dbError(err)
	}
	if err := u.tokens.DeleteByID(ctx, rt.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return u.dbError(err)
	}
	return nil
}

func (u *SessionUsecase) revokeAll(ctx context.Context, userID int64, reason string) {
	u.logger.Warn("revoking all refresh tokens", zap.Int64("user_id", userID), zap.String("reason", reason))
	if err := u.tokens.DeleteAllByUserID(ctx, userID); err != nil {
		u.logger.Error("refresh token revoke failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (u *SessionUsecase) dbError(err error) error {
	u.logger.Error("refresh token lookup failed", zap.Error(err))
	return usecase.Internal("db error", err)
}

// 平文 + DB保存用hash
func newRandomTokenAndHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, hashToken(plain), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
