package handler

import (
	"net/http"

	"charforge/internal/middleware"
	"charforge/internal/usecase"
	auth "charforge/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// /auth/* と /me（本人のアカウント）
type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	sessionUC  *auth.SessionUsecase
	passwordUC *auth.PasswordUsecase
	accountUC  *usecase.AccountUsecase
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	sessionUC *auth.SessionUsecase,
	passwordUC *auth.PasswordUsecase,
	accountUC *usecase.AccountUsecase,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		sessionUC:  sessionUC,
		passwordUC: passwordUC,
		accountUC:  accountUC,
	}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Pseudo   string `json:"pseudo" validate:"required,notblank,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type deleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, mw Middlewares) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
	e.POST("/auth/refresh", h.refresh)
	e.POST("/auth/logout", h.logout)
	e.POST("/auth/password/forgot", h.forgotPassword)
	e.POST("/auth/password/reset", h.resetPassword)

	// 一時パスワードのままでも変更だけはできる
	e.POST("/auth/password/change", h.changePassword, mw.Session...)
	e.DELETE("/me", h.deleteMe, mw.Member...)
}

// 会員登録
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	user, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:    req.Email,
		Pseudo:   req.Pseudo,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// リフレッシュトークンのローテーション
func (h *AuthHandler) refresh(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	out, err := h.sessionUC.Refresh(c.Request().Context(), req.RefreshToken, c.Request().UserAgent())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) logout(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.sessionUC.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logout success"})
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	err := h.passwordUC.ChangePassword(c.Request().Context(), middleware.PrincipalFrom(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "password changed"})
}

// 登録有無にかかわらず同じレスポンス
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.passwordUC.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, SuccessResponse{Message: "if the address is registered, a reset link was sent"})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.passwordUC.ConfirmPasswordReset(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "password reset"})
}

func (h *AuthHandler) deleteMe(c echo.Context) error {
	var req deleteAccountRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.accountUC.DeleteOwnAccount(c.Request().Context(), middleware.PrincipalFrom(c), req.Password); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
