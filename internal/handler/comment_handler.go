package handler

import (
	"net/http"

	"charforge/internal/middleware"
	"charforge/internal/usecase"

	"github.com/labstack/echo/v4"
)

type commentRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"required"`
}

type CommentHandler struct {
	uc *usecase.CommentUsecase
}

// DI
func NewCommentHandler(uc *usecase.CommentUsecase) *CommentHandler {
	return &CommentHandler{uc: uc}
}

func (h *CommentHandler) RegisterRoutes(e *echo.Echo, mw Middlewares) {
	e.GET("/characters/:id/comments", h.listForCharacter, mw.Optional...)
	e.POST("/characters/:id/comments", h.create, mw.Member...)

	me := e.Group("/me/comments", mw.Member...)
	me.GET("", h.listMine)
	me.DELETE("/:id", h.delete)
}

func (h *CommentHandler) listForCharacter(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.uc.ListApprovedForCharacter(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

func (h *CommentHandler) create(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req commentRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	cm, err := h.uc.Create(c.Request().Context(), middleware.PrincipalFrom(c), id, usecase.CreateCommentInput{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cm)
}

func (h *CommentHandler) listMine(c echo.Context) error {
	items, err := h.uc.ListMine(c.Request().Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

func (h *CommentHandler) delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
