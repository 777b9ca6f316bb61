package handler

import (
	"net/http"

	"charforge/internal/middleware"
	"charforge/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AccountHandler は1つのロールのアカウント一覧・停止・再開・削除。
// /moderation/users（USER）と /admin/employees（EMPLOYEE）で使う。
type AccountHandler struct {
	uc *usecase.AccountModerationUsecase
}

func NewAccountHandler(uc *usecase.AccountModerationUsecase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

func (h *AccountHandler) register(g *echo.Group) {
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/:id/suspend", h.suspend)
	g.POST("/:id/reactivate", h.reactivate)
	g.DELETE("/:id", h.delete)
}

// ?page=&q=
func (h *AccountHandler) list(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.List(c.Request().Context(), middleware.PrincipalFrom(c), page, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	u, err := h.uc.Get(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) suspend(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req reasonRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	u, err := h.uc.Suspend(c.Request().Context(), middleware.PrincipalFrom(c), id, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) reactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	u, err := h.uc.Reactivate(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
