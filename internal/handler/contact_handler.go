package handler

import (
	"net/http"

	"charforge/internal/usecase"

	"github.com/labstack/echo/v4"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// 問い合わせフォーム（ログイン不要）
type ContactHandler struct {
	uc *usecase.ContactUsecase
}

func NewContactHandler(uc *usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{uc: uc}
}

func (h *ContactHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/contact", h.send)
}

func (h *ContactHandler) send(c echo.Context) error {
	var req contactRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	err := h.uc.Send(c.Request().Context(), usecase.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, SuccessResponse{Message: "message sent"})
}
