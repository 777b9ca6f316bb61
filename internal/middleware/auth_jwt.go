package middleware

import (
	"net/http"
	"strings"

	"charforge/internal/domain/model"
	auth "charforge/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxPrincipalKey    = "principal"     // model.Principal
	CtxTokenVersionKey = "token_version" // int
)

// アクセストークンを検証する約束（auth.JWTIssuer）
type TokenParser interface {
	Parse(token string) (auth.AccessClaims, error)
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}

			claims, err := parser.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}

			//contextへ保存
			setClaims(c, claims)
			return next(c)
		}
	}
}

// OptionalAuthJWT は公開ルート用。トークンがあれば検証し、無ければ匿名で通す。
// 不正なトークンは401。
func OptionalAuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}
			claims, err := parser.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

// PrincipalFrom は操作者を返す。未認証ならゼロ値。
func PrincipalFrom(c echo.Context) model.Principal {
	p, _ := c.Get(CtxPrincipalKey).(model.Principal)
	return p
}

func setClaims(c echo.Context, claims auth.AccessClaims) {
	c.Set(CtxPrincipalKey, model.Principal{
		UserID: claims.UserID,
		Pseudo: claims.Pseudo,
		Role:   claims.Role,
	})
	c.Set(CtxTokenVersionKey, claims.TokenVersion)
}

// Bearer形式か確認してtokenを抜く
func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorJSON(code, msg string) errorResponse {
	return errorResponse{Error: code, Message: msg}
}
