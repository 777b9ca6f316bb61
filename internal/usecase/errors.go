package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの分類。handlerはこれをHTTPステータスに変換する。
type ErrorCode string

const (
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeUnauthenticated ErrorCode = "UNAUTHORIZED"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeInternal        ErrorCode = "INTERNAL"
)

var codeStatus = map[ErrorCode]int{
	CodeValidation:      http.StatusBadRequest,
	CodeUnauthenticated: http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodeInternal:        http.StatusInternalServerError,
}

type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	if s, ok := codeStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func newAppError(code ErrorCode, message string) error {
	return &AppError{Code: code, Message: message}
}

func Validation(message string) error      { return newAppError(CodeValidation, message) }
func Unauthenticated(message string) error { return newAppError(CodeUnauthenticated, message) }
func Forbidden(message string) error       { return newAppError(CodeForbidden, message) }
func NotFound(message string) error        { return newAppError(CodeNotFound, message) }
func Conflict(message string) error        { return newAppError(CodeConflict, message) }

// Internal は原因をラップした500エラーを返す
func Internal(message string, cause error) error {
	return &AppError{Code: CodeInternal, Message: message, Err: cause}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// CodeOf はエラーの分類を返す。AppError以外はINTERNAL扱い。
func CodeOf(err error) ErrorCode {
	if ae, ok := AsAppError(err); ok {
		return ae.Code
	}
	return CodeInternal
}

// tx内で返したAppErrorはそのまま返し、それ以外はINTERNALに包む
func passAppError(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	return Internal(message, err)
}
