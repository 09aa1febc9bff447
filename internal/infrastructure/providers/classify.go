package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	appErrors "ether-stories-api/pkg/errors"
)

// classifyProviderError 把底层调用错误归一化为统一错误码。
// fallback 用于无法识别的内容类失败（不重试）。
func classifyProviderError(err error, fallback *appErrors.AppError) error {
	if err == nil {
		return nil
	}
	if appErrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.ErrProviderTimeout.WithError(err)
	}
	if errors.Is(err, context.Canceled) {
		return appErrors.ErrCancelled.WithError(err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return appErrors.ErrProviderRejected.WithError(err)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return appErrors.ErrProviderTimeout.WithError(err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "unexpected eof"),
		strings.Contains(msg, "502"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "service unavailable"):
		return appErrors.ErrProviderUnavailable.WithError(err)
	}
	return fallback.WithError(err)
}

// classifyHTTPStatus 按 HTTP 状态码归一化
func classifyHTTPStatus(status int, err error, fallback *appErrors.AppError) error {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return appErrors.ErrProviderTimeout.WithError(err)
	case status == http.StatusTooManyRequests:
		return appErrors.ErrProviderRejected.WithError(err)
	case status >= 500:
		return appErrors.ErrProviderUnavailable.WithError(err)
	}
	return fallback.WithError(err)
}
