package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ether-stories-api/internal/config"
	appErrors "ether-stories-api/pkg/errors"
)

func testRetryPolicy() RetryPolicy {
	return NewRetryPolicy(config.RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})
}

func TestRetryTransientErrorRetriedUntilExhausted(t *testing.T) {
	p := testRetryPolicy()

	calls := 0
	attempts, err := p.Do(context.Background(), "text", "openai", func(ctx context.Context) error {
		calls++
		return appErrors.ErrProviderTimeout
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, attempts)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeProviderTimeout))
}

func TestRetryTransientErrorEventuallySucceeds(t *testing.T) {
	p := testRetryPolicy()

	calls := 0
	attempts, err := p.Do(context.Background(), "image", "ark", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return appErrors.ErrProviderUnavailable
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, attempts)
}

func TestRetryPermanentErrorNotRetried(t *testing.T) {
	p := testRetryPolicy()

	calls := 0
	attempts, err := p.Do(context.Background(), "text", "openai", func(ctx context.Context) error {
		calls++
		return appErrors.ErrGenerationFailed
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-transient errors must fail fast")
	assert.Equal(t, 1, attempts)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeGenerationFailed))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	p := NewRetryPolicy(config.RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := p.Do(ctx, "speech", "openai", func(ctx context.Context) error {
		calls++
		cancel()
		return appErrors.ErrProviderTimeout
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "cancellation must stop the retry loop at the backoff gate")
}

func TestRetryDefaults(t *testing.T) {
	p := NewRetryPolicy(config.RetryConfig{})

	assert.Equal(t, 3, p.maxAttempts)
	assert.Equal(t, 500*time.Millisecond, p.initialInterval)
	assert.Equal(t, 10*time.Second, p.maxInterval)
}

func TestClassifyProviderError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code appErrors.ErrorCode
	}{
		{"deadline", context.DeadlineExceeded, appErrors.CodeProviderTimeout},
		{"cancel", context.Canceled, appErrors.CodeCancelled},
		{"rate limit", errors.New("429 too many requests"), appErrors.CodeProviderRejected},
		{"timeout text", errors.New("request timeout exceeded"), appErrors.CodeProviderTimeout},
		{"bad gateway", errors.New("502 bad gateway"), appErrors.CodeProviderUnavailable},
		{"opaque", errors.New("something odd"), appErrors.CodeGenerationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyProviderError(tc.err, appErrors.ErrGenerationFailed)
			assert.True(t, appErrors.IsCode(got, tc.code), "got code %s", appErrors.CodeOf(got))
		})
	}

	// AppError 原样透传
	passthrough := classifyProviderError(appErrors.ErrTranslationFailed, appErrors.ErrGenerationFailed)
	assert.True(t, appErrors.IsCode(passthrough, appErrors.CodeTranslationFailed))
}
