// Package errorx 定义对调用方可见的稳定错误类别
package errorx

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind 错误类别
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindForbidden         Kind = "FORBIDDEN"
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindInternal          Kind = "INTERNAL"
)

// Error 带类别的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error { return e.Err }

// Is 按类别比较，使 errors.Is(err, errorx.ErrNotFound) 成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Extensions 供 GraphQL 响应携带错误类别
func (e *Error) Extensions() map[string]any {
	return map[string]any{"code": string(e.Kind)}
}

// 仅含类别的哨兵错误，用于 errors.Is 判断
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation 输入不合法
func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

// NotFound 引用的实体不存在
func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

// Conflict 唯一键冲突
func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

// InsufficientStock 库存不足
func InsufficientStock(format string, args ...any) *Error {
	return newf(KindInsufficientStock, format, args...)
}

// Forbidden 所有权或角色不匹配
func Forbidden(format string, args ...any) *Error { return newf(KindForbidden, format, args...) }

// Unauthenticated 缺失、无效或过期的令牌
func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}

// Internal 包装非预期错误
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf 返回错误类别，非 *Error 视为 INTERNAL
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判断错误是否属于某类别
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Public 返回可以暴露给调用方的错误：业务错误原样返回，其余统一屏蔽
func Public(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e
	}
	return &Error{Kind: KindInternal, Message: "internal server error"}
}

// HTTPStatus 类别到 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInsufficientStock:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode 类别到 gRPC 状态码
func GRPCCode(err error) codes.Code {
	switch KindOf(err) {
	case "":
		return codes.OK
	case KindValidation:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindConflict:
		return codes.AlreadyExists
	case KindInsufficientStock:
		return codes.FailedPrecondition
	case KindForbidden:
		return codes.PermissionDenied
	case KindUnauthenticated:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}
