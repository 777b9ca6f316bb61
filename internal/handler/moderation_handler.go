package handler

import (
	"net/http"
	"strconv"
	"time"

	"charforge/internal/middleware"
	"charforge/internal/usecase"

	"github.com/labstack/echo/v4"
)

type reasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// /moderation/* （EMPLOYEE / ADMIN）
type ModerationHandler struct {
	characters *usecase.ModerationUsecase
	comments   *usecase.CommentModerationUsecase
	users      *AccountHandler
	accounts   *usecase.AccountUsecase
	logs       *usecase.ActivityLogUsecase
}

func NewModerationHandler(
	characters *usecase.ModerationUsecase,
	comments *usecase.CommentModerationUsecase,
	users *usecase.AccountModerationUsecase,
	accounts *usecase.AccountUsecase,
	logs *usecase.ActivityLogUsecase,
) *ModerationHandler {
	return &ModerationHandler{
		characters: characters,
		comments:   comments,
		users:      NewAccountHandler(users),
		accounts:   accounts,
		logs:       logs,
	}
}

func (h *ModerationHandler) RegisterRoutes(e *echo.Echo, mw Middlewares) {
	g := e.Group("/moderation", mw.Reviewer...)

	g.GET("/characters/pending", h.pendingCharacters)
	g.POST("/characters/:id/approve", h.approveCharacter)
	g.POST("/characters/:id/reject", h.rejectCharacter)

	g.GET("/comments/pending", h.pendingComments)
	g.POST("/comments/:id/approve", h.approveComment)
	g.POST("/comments/:id/reject", h.rejectComment)

	h.users.register(g.Group("/users"))
	g.POST("/users/:id/reset-password", h.resetPassword)

	g.GET("/activity-logs", h.activityLogs)
}

func (h *ModerationHandler) pendingCharacters(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.characters.ListPending(c.Request().Context(), middleware.PrincipalFrom(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ModerationHandler) approveCharacter(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ch, err := h.characters.Approve(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *ModerationHandler) rejectCharacter(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req reasonRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ch, err := h.characters.Reject(c.Request().Context(), middleware.PrincipalFrom(c), id, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *ModerationHandler) pendingComments(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.comments.ListPending(c.Request().Context(), middleware.PrincipalFrom(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ModerationHandler) approveComment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	cm, err := h.comments.Approve(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *ModerationHandler) rejectComment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req reasonRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	cm, err := h.comments.Reject(c.Request().Context(), middleware.PrincipalFrom(c), id, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *ModerationHandler) resetPassword(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.accounts.ResetPassword(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "temporary password sent"})
}

// ?action=&actor_id=&from=&to=（RFC3339）&page=
func (h *ModerationHandler) activityLogs(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	in := usecase.ListActivityLogsInput{
		Action: c.QueryParam("action"),
		Page:   page,
	}

	if v := c.QueryParam("actor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeError(c, usecase.Validation("invalid actor_id"))
		}
		in.ActorUserID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return writeError(c, usecase.Validation("invalid from"))
		}
		in.From = &tm
	}
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return writeError(c, usecase.Validation("invalid to"))
		}
		in.To = &tm
	}

	res, err := h.logs.List(c.Request().Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
