package carbon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ether-stories-api/internal/config"
	"ether-stories-api/internal/domain/entity"
	appErrors "ether-stories-api/pkg/errors"
)

type failureWithAttempts struct {
	attempts int
	err      error
}

func (f *failureWithAttempts) Error() string     { return f.err.Error() }
func (f *failureWithAttempts) Unwrap() error     { return f.err }
func (f *failureWithAttempts) CallAttempts() int { return f.attempts }

func testMeter() *Meter {
	return NewMeter(NewPowerEstimator(config.CarbonConfig{
		DeviceWatts:              350,
		GridIntensityGramsPerKWh: 475,
		GramsPerKiloToken:        0.2,
	}))
}

func TestMeterSuccessProducesRecord(t *testing.T) {
	m := testMeter()

	rec, err := m.Measure(context.Background(), entity.OperationText, "openai", func(ctx context.Context) (Usage, error) {
		time.Sleep(time.Millisecond)
		return Usage{PromptTokens: 100, CompletionTokens: 400, Attempts: 1}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OperationText, rec.Operation)
	assert.Equal(t, "openai", rec.Provider)
	assert.True(t, rec.Succeeded)
	assert.Equal(t, 1, rec.Attempts)
	assert.Greater(t, rec.EstimatedGrams, 0.0, "token usage must contribute to the estimate")
}

func TestMeterFailureStillMetered(t *testing.T) {
	m := testMeter()

	rec, err := m.Measure(context.Background(), entity.OperationImage, "ark", func(ctx context.Context) (Usage, error) {
		return Usage{}, appErrors.ErrProviderUnavailable
	})
	require.Error(t, err)

	assert.False(t, rec.Succeeded)
	assert.Equal(t, 1, rec.Attempts, "attempts default to 1 when the error carries no count")
	assert.GreaterOrEqual(t, rec.EstimatedGrams, 0.0)
}

func TestMeterExtractsAttemptsFromError(t *testing.T) {
	m := testMeter()

	rec, err := m.Measure(context.Background(), entity.OperationSpeech, "openai", func(ctx context.Context) (Usage, error) {
		return Usage{}, &failureWithAttempts{attempts: 3, err: appErrors.ErrProviderTimeout}
	})
	require.Error(t, err)

	assert.Equal(t, 3, rec.Attempts)
	assert.False(t, rec.Succeeded)
}

func TestPowerEstimatorMath(t *testing.T) {
	e := NewPowerEstimator(config.CarbonConfig{
		DeviceWatts:              350,
		GridIntensityGramsPerKWh: 475,
		GramsPerKiloToken:        0.2,
	})

	// 1 小时 × 0.35 kW × 475 g/kWh = 166.25 g，再加 1000 token × 0.2 g/ktoken
	got := e.Estimate(entity.OperationText, time.Hour, Usage{PromptTokens: 400, CompletionTokens: 600})
	assert.InDelta(t, 166.25+0.2, got, 1e-9)

	// 零时长、零 token 不产生负值
	assert.Equal(t, 0.0, e.Estimate(entity.OperationImage, 0, Usage{}))
	assert.Equal(t, 0.0, e.Estimate(entity.OperationImage, -time.Second, Usage{}))
}

func TestPowerEstimatorDefaults(t *testing.T) {
	e := NewPowerEstimator(config.CarbonConfig{})

	got := e.Estimate(entity.OperationText, time.Hour, Usage{})
	assert.InDelta(t, 0.35*475, got, 1e-9)
}
