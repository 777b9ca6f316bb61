package handler

import (
	"net/http"
	"strconv"

	"charforge/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse は本文の無い成功レスポンス
type SuccessResponse struct {
	Message string `json:"message"`
}

// Middlewares はルートごとに付けるミドルウェアの組
type Middlewares struct {
	Optional []echo.MiddlewareFunc // トークンがあれば検証（公開ルート）
	Session  []echo.MiddlewareFunc // JWT + token_version（パスワード変更用）
	Member   []echo.MiddlewareFunc // Session + 一時パスワードでないこと
	Reviewer []echo.MiddlewareFunc // Member + EMPLOYEE/ADMIN
	Admin    []echo.MiddlewareFunc // Member + ADMIN
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok {
		msg := ae.Message
		if ae.Code == usecase.CodeInternal {
			// 原因は外に出さない
			msg = "internal error"
		}
		return c.JSON(ae.Status(), ErrorResponse{Error: string(ae.Code), Message: msg})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: string(usecase.CodeInternal), Message: "internal error"})
}

// bind はJSONを読み、タグで検証する
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return usecase.Validation("invalid body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.Validation("invalid " + name)
	}
	return id, nil
}

// page（default 1）。範囲チェックはusecase側。
func queryPage(c echo.Context) (int, error) {
	v := c.QueryParam("page")
	if v == "" {
		return 1, nil
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		return 0, usecase.Validation("invalid page")
	}
	return p, nil
}
