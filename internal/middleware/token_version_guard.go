package middleware

import (
	"net/http"

	"charforge/internal/domain/model"
	"charforge/internal/repository"

	"github.com/labstack/echo/v4"
)

// TokenVersionGuard はJWTのtvとDBのtoken_versionが一致するか確認する。
// 停止中のアカウントは403。ロールとpseudoはDBの最新値で上書きする。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if !p.Authenticated() {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}

			//DBから最新のuserを取得する（削除済みも401）
			user, err := userRepo.FindByID(c.Request().Context(), p.UserID)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}

			//token_version が一致しなければ強制ログアウト扱い（401）
			if user.TokenVersion != tv {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}
			if user.IsSuspended {
				return c.JSON(http.StatusForbidden, errorJSON("FORBIDDEN", "account is suspended"))
			}

			c.Set(CtxPrincipalKey, model.Principal{UserID: user.ID, Pseudo: user.Pseudo, Role: user.Role})
			c.Set(CtxMustChangePasswordKey, user.MustChangePassword)
			return next(c)
		}
	}
}

// OptionalTokenVersionGuard はトークン付きのときだけ TokenVersionGuard と同じ確認をする。
// 匿名はそのまま通す。
func OptionalTokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	guard := TokenVersionGuard(userRepo)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := guard(next)
		return func(c echo.Context) error {
			if !PrincipalFrom(c).Authenticated() {
				return next(c)
			}
			return guarded(c)
		}
	}
}

const CtxMustChangePasswordKey = "must_change_password" // bool

// PasswordChangedGuard は一時パスワードのままのユーザーを止める。
// パスワード変更のルートには付けない。
func PasswordChangedGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if must, _ := c.Get(CtxMustChangePasswordKey).(bool); must {
				return c.JSON(http.StatusForbidden, errorJSON("FORBIDDEN", "password change required"))
			}
			return next(c)
		}
	}
}
