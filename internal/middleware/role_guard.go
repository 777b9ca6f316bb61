package middleware

import (
	"net/http"

	"charforge/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// RoleGuard はcontextの操作者が指定ロールのいずれかか確認します。
func RoleGuard(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if !p.Authenticated() {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
			}
			if _, ok := allowed[p.Role]; !ok {
				return c.JSON(http.StatusForbidden, errorJSON("FORBIDDEN", "insufficient role"))
			}
			return next(c)
		}
	}
}

// 審査担当者（EMPLOYEE / ADMIN）
func ReviewerGuard() echo.MiddlewareFunc {
	return RoleGuard(model.RoleEmployee, model.RoleAdmin)
}

func AdminGuard() echo.MiddlewareFunc {
	return RoleGuard(model.RoleAdmin)
}
