// Package errors 提供统一的错误定义
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidRequest     ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1002"
	CodeInternalError      ErrorCode = "1003"
	CodeServiceUnavailable ErrorCode = "1004"
	CodeCancelled          ErrorCode = "1005"

	// 生成业务错误 (4xxx)
	CodeGenerationFailed  ErrorCode = "4001"
	CodePlanningFailed    ErrorCode = "4002"
	CodeTranslationFailed ErrorCode = "4003"

	// 提供商错误 (5xxx)，重试耗尽后由适配器归一化抛出
	CodeProviderTimeout     ErrorCode = "5001"
	CodeProviderRejected    ErrorCode = "5002"
	CodeProviderUnavailable ErrorCode = "5003"

	// 基础设施错误 (6xxx)
	CodeDatabaseError  ErrorCode = "6001"
	CodeCacheError     ErrorCode = "6002"
	CodeStorageError   ErrorCode = "6003"
	CodeMessagingError ErrorCode = "6004"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 返回携带详细信息的副本，预定义错误可安全复用
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 返回携带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeProviderTimeout:
		return http.StatusGatewayTimeout
	case CodeProviderUnavailable, CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidRequest      = New(CodeInvalidRequest, "invalid story request")
	ErrNotFound            = New(CodeNotFound, "resource not found")
	ErrInternalError       = New(CodeInternalError, "internal error")
	ErrServiceUnavailable  = New(CodeServiceUnavailable, "service unavailable")
	ErrGenerationFailed    = New(CodeGenerationFailed, "chapter text generation failed")
	ErrPlanningFailed      = New(CodePlanningFailed, "chapter planning failed")
	ErrTranslationFailed   = New(CodeTranslationFailed, "chapter translation failed")
	ErrProviderTimeout     = New(CodeProviderTimeout, "provider call timed out")
	ErrProviderRejected    = New(CodeProviderRejected, "provider rejected the request")
	ErrProviderUnavailable = New(CodeProviderUnavailable, "provider unavailable")
	ErrCancelled           = New(CodeCancelled, "generation cancelled")
	ErrDatabaseError       = New(CodeDatabaseError, "database error")
	ErrCacheError          = New(CodeCacheError, "cache error")
	ErrStorageError        = New(CodeStorageError, "media storage error")
	ErrMessagingError      = New(CodeMessagingError, "messaging error")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// CodeOf 提取错误码；非 AppError 返回 CodeUnknown
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeSuccess
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// IsCode 判断错误链上是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsProviderTransient 判断是否为可重试的提供商错误
func IsProviderTransient(err error) bool {
	switch CodeOf(err) {
	case CodeProviderTimeout, CodeProviderRejected, CodeProviderUnavailable:
		return true
	}
	return false
}
