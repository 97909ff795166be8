package usecase

import (
	"errors"
	"fmt"
)

// ErrorCode はエンジンが返すエラー分類。
// transport側（call/HTTP）がそれぞれステータスへ写像する。
type ErrorCode string

const (
	CodeUnauthenticated    ErrorCode = "unauthenticated"
	CodeInvalidArgument    ErrorCode = "invalid-argument"
	CodeNotFound           ErrorCode = "not-found"
	CodeFailedPrecondition ErrorCode = "failed-precondition"
	CodePermissionDenied   ErrorCode = "permission-denied"
	CodeInternal           ErrorCode = "internal"
)

type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}
