package auth

import (
	"context"
	"errors"
	"time"

	"charforge/internal/domain/model"
	"charforge/internal/repository"
	"charforge/internal/usecase"

	"go.uber.org/zap"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

// token 形（JwtAccessToken相当）
type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User         model.User     `json:"user"`
	Token        JwtAccessToken `json:"token"`
	RefreshToken string         `json:"refresh_token"`
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(user *model.User, now time.Time) (token string, expiresAt time.Time, err error)
}

type LoginUsecase struct {
	userRepo repository.UserRepository
	verifier usecase.PasswordVerifier
	issuer   AccessTokenIssuer
	sessions *SessionUsecase
	clock    usecase.Clock
	logger   *zap.Logger
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	verifier usecase.PasswordVerifier,
	issuer AccessTokenIssuer,
	sessions *SessionUsecase,
	clock usecase.Clock,
	logger *zap.Logger,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo: userRepo,
		verifier: verifier,
		issuer:   issuer,
		sessions: sessions,
		clock:    clock,
		logger:   logger,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, model.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, usecase.Unauthenticated("invalid credentials")
		}
		u.logger.Error("login lookup failed", zap.Error(err))
		return out, usecase.Internal("db error", err)
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, usecase.Unauthenticated("invalid credentials")
	}

	//停止ユーザーはログイン不可
	if user.IsSuspended {
		return out, usecase.Forbidden("account is suspended")
	}

	//AccessToken発行
	now := u.clock.Now()
	token, err := issueAccessToken(u.issuer, user, now)
	if err != nil {
		return out, err
	}
	refresh, err := u.sessions.Start(ctx, user, in.UserAgent)
	if err != nil {
		return out, err
	}

	//最終ログイン時刻更新（失敗してもログインは通す）
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		u.logger.Warn("last login update failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	out.User = *user
	out.Token = token
	out.RefreshToken = refresh
	return out, nil
}

func issueAccessToken(issuer AccessTokenIssuer, user *model.User, now time.Time) (JwtAccessToken, error) {
	accessToken, accessExp, err := issuer.Issue(user, now)
	if err != nil {
		return JwtAccessToken{}, usecase.Internal("token issue failed", err)
	}
	return JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}, nil
}
