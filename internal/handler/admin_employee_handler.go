package handler

import (
	"net/http"

	"charforge/internal/middleware"
	"charforge/internal/usecase"

	"github.com/labstack/echo/v4"
)

type createEmployeeRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// /admin/employees（ADMIN）
type AdminEmployeeHandler struct {
	create   *usecase.EmployeeManagementUsecase
	accounts *AccountHandler
}

func NewAdminEmployeeHandler(create *usecase.EmployeeManagementUsecase, employees *usecase.AccountModerationUsecase) *AdminEmployeeHandler {
	return &AdminEmployeeHandler{create: create, accounts: NewAccountHandler(employees)}
}

func (h *AdminEmployeeHandler) RegisterRoutes(e *echo.Echo, mw Middlewares) {
	g := e.Group("/admin/employees", mw.Admin...)
	g.POST("", h.createEmployee)
	h.accounts.register(g)
}

func (h *AdminEmployeeHandler) createEmployee(c echo.Context) error {
	var req createEmployeeRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	u, err := h.create.CreateEmployee(c.Request().Context(), middleware.PrincipalFrom(c), usecase.CreateEmployeeInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}
