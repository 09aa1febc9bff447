package carbon

import (
	"context"
	"errors"
	"time"

	"ether-stories-api/internal/domain/entity"
	"ether-stories-api/pkg/logger"
	"ether-stories-api/pkg/metrics"
)

// CallFunc 被计量的提供商调用。返回用量供估算模型使用。
type CallFunc func(ctx context.Context) (Usage, error)

type attemptCounter interface {
	CallAttempts() int
}

// Meter 排放计量器。每次逻辑调用（含内部重试）恰好产出一条 EmissionRecord，
// 失败的调用同样计量——电已经耗掉了。
type Meter struct {
	estimator Estimator
}

func NewMeter(estimator Estimator) *Meter {
	return &Meter{estimator: estimator}
}

// Measure 执行 call 并计量。无论成败都返回一条记录；err 为 call 的原始错误。
func (m *Meter) Measure(ctx context.Context, op entity.OperationKind, provider string, call CallFunc) (entity.EmissionRecord, error) {
	start := time.Now()
	usage, err := call(ctx)
	elapsed := time.Since(start)

	attempts := usage.Attempts
	if err != nil {
		var ac attemptCounter
		if errors.As(err, &ac) {
			attempts = ac.CallAttempts()
		}
	}
	if attempts <= 0 {
		attempts = 1
	}

	record := entity.EmissionRecord{
		Operation:      op,
		Provider:       provider,
		EstimatedGrams: m.estimator.Estimate(op, elapsed, usage),
		DurationMs:     elapsed.Milliseconds(),
		Attempts:       attempts,
		Succeeded:      err == nil,
	}

	metrics.EmissionGramsTotal.WithLabelValues(string(op)).Add(record.EstimatedGrams)
	logger.Debug(ctx, "emission metered",
		"operation", string(op),
		"provider", provider,
		"grams", record.EstimatedGrams,
		"duration_ms", record.DurationMs,
		"attempts", attempts,
		"succeeded", record.Succeeded,
	)
	return record, err
}
