package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/logging"
)

var (
	//401
	ErrUnauthenticated = authz.ErrUnauthenticated
	//401 匿名セッションでの書き込み
	ErrLoginRequired = authz.ErrLoginRequired
	//403
	ErrForbidden = authz.ErrForbidden
	//404
	ErrNotFound = errors.New("not found")
	//400
	ErrEmptySelection       = errors.New("empty selection")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrMissingTracking      = errors.New("missing tracking number")
	ErrInvalidInput         = errors.New("invalid input")
	//409
	ErrItemUnavailable        = errors.New("item unavailable")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrApplicationExists      = errors.New("application exists")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrEmailTaken             = errors.New("email already registered")
	//500
	ErrPartialClearFailure = errors.New("partial clear failure")
	ErrInternal            = errors.New("internal error")
)

// HTTPError はハンドラがそのままステータスに使う。
// Err に種別を持たせるので errors.Is でも判定できる。
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var statusOf = map[error]int{
	ErrUnauthenticated:        http.StatusUnauthorized,
	ErrLoginRequired:          http.StatusUnauthorized,
	ErrForbidden:              http.StatusForbidden,
	ErrNotFound:               http.StatusNotFound,
	ErrEmptySelection:         http.StatusBadRequest,
	ErrMissingRequiredField:   http.StatusBadRequest,
	ErrMissingTracking:        http.StatusBadRequest,
	ErrInvalidInput:           http.StatusBadRequest,
	ErrItemUnavailable:        http.StatusConflict,
	ErrConcurrentModification: http.StatusConflict,
	ErrApplicationExists:      http.StatusConflict,
	ErrInvalidTransition:      http.StatusConflict,
	ErrEmailTaken:             http.StatusConflict,
	ErrPartialClearFailure:    http.StatusInternalServerError,
	ErrInternal:               http.StatusInternalServerError,
}

// failWith は種別とメッセージからHTTPErrorを作る
func failWith(kind error, message string) error {
	status, ok := statusOf[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &HTTPError{Status: status, Message: message, Err: kind}
}

// gateError は authz のエラーをHTTPErrorに変える
func gateError(err error) error {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return failWith(ErrUnauthenticated, "unauthorized")
	case errors.Is(err, ErrLoginRequired):
		return failWith(ErrLoginRequired, "login required")
	}
	return failWith(ErrForbidden, "forbidden")
}

// dbError はストアの失敗を記録して中身を出さずに500にする
func dbError(ctx context.Context, op string, err error) error {
	logging.FromContext(ctx).Error("store failure", "op", op, "err", err)
	return failWith(ErrInternal, "db error")
}

// passOrDB はtx内で作ったHTTPErrorはそのまま通し、それ以外はdb errorにする
func passOrDB(ctx context.Context, op string, err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return dbError(ctx, op, err)
}
