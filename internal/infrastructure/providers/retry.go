package providers

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ether-stories-api/internal/config"
	appErrors "ether-stories-api/pkg/errors"
	"ether-stories-api/pkg/logger"
	"ether-stories-api/pkg/metrics"
)

// RetryPolicy 对提供商调用做指数退避重试。
// 仅重试瞬时错误（超时、限流、暂不可用）；内容类失败直接失败。
type RetryPolicy struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
}

func NewRetryPolicy(cfg config.RetryConfig) RetryPolicy {
	p := RetryPolicy{
		maxAttempts:     cfg.MaxAttempts,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = 3
	}
	if p.initialInterval <= 0 {
		p.initialInterval = 500 * time.Millisecond
	}
	if p.maxInterval <= 0 {
		p.maxInterval = 10 * time.Second
	}
	return p
}

// Do 执行 fn 直至成功或重试耗尽，返回实际尝试次数和最后一次错误。
func (p RetryPolicy) Do(ctx context.Context, operation, provider string, fn func(ctx context.Context) error) (int, error) {
	attempts := 0

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialInterval
	bo.MaxInterval = p.maxInterval
	bo.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		attempts++
		callErr := fn(ctx)
		if callErr == nil {
			return nil
		}
		if !appErrors.IsProviderTransient(callErr) {
			return backoff.Permanent(callErr)
		}
		if attempts < p.maxAttempts {
			metrics.ProviderRetryTotal.WithLabelValues(operation, provider).Inc()
			logger.Warn(ctx, "provider call failed, retrying",
				"operation", operation,
				"provider", provider,
				"attempt", attempts,
				"error", callErr.Error(),
			)
		}
		return callErr
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.maxAttempts-1)), ctx))

	return attempts, err
}
