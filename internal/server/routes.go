package server

import (
	"net/http"

	"charforge/internal/handler"
	"charforge/internal/middleware"
	"charforge/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers はルーティングに載せるハンドラ一式
type Handlers struct {
	Auth       *handler.AuthHandler
	Characters *handler.CharacterHandler
	Comments   *handler.CommentHandler
	Moderation *handler.ModerationHandler
	Employees  *handler.AdminEmployeeHandler
	Contact    *handler.ContactHandler
}

// BuildMiddlewares はロールごとのミドルウェアの組を作る
func BuildMiddlewares(parser middleware.TokenParser, userRepo repository.UserRepository) handler.Middlewares {
	session := []echo.MiddlewareFunc{
		middleware.AuthJWT(parser),
		middleware.TokenVersionGuard(userRepo),
	}
	member := append(append([]echo.MiddlewareFunc{}, session...), middleware.PasswordChangedGuard())

	return handler.Middlewares{
		Optional: []echo.MiddlewareFunc{
			middleware.OptionalAuthJWT(parser),
			middleware.OptionalTokenVersionGuard(userRepo),
		},
		Session:  session,
		Member:   member,
		Reviewer: append(append([]echo.MiddlewareFunc{}, member...), middleware.ReviewerGuard()),
		Admin:    append(append([]echo.MiddlewareFunc{}, member...), middleware.AdminGuard()),
	}
}

func RegisterRoutes(e *echo.Echo, h Handlers, mw handler.Middlewares) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h.Auth.RegisterRoutes(e, mw)
	h.Characters.RegisterRoutes(e, mw)
	h.Comments.RegisterRoutes(e, mw)
	h.Moderation.RegisterRoutes(e, mw)
	h.Employees.RegisterRoutes(e, mw)
	h.Contact.RegisterRoutes(e)
}
