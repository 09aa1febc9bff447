// Package carbon 提供 AI 调用的碳成本计量。
// 估算模型可替换：默认按调用时长的设备功耗与电网碳强度折算，
// 文本类调用再按 token 量叠加一项。
package carbon

import (
	"time"

	"ether-stories-api/internal/config"
	"ether-stories-api/internal/domain/entity"
)

// Usage 单次逻辑调用的用量，供估算模型使用
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	Attempts         int
}

// Estimator 排放估算模型端口
type Estimator interface {
	Estimate(op entity.OperationKind, elapsed time.Duration, usage Usage) float64
}

// PowerEstimator 缺省估算模型：时长 × 设备功耗 × 电网碳强度 + token 项
type PowerEstimator struct {
	deviceWatts       float64
	gridGramsPerKWh   float64
	gramsPerKiloToken float64
}

func NewPowerEstimator(cfg config.CarbonConfig) *PowerEstimator {
	e := &PowerEstimator{
		deviceWatts:       cfg.DeviceWatts,
		gridGramsPerKWh:   cfg.GridIntensityGramsPerKWh,
		gramsPerKiloToken: cfg.GramsPerKiloToken,
	}
	if e.deviceWatts <= 0 {
		e.deviceWatts = 350
	}
	if e.gridGramsPerKWh <= 0 {
		e.gridGramsPerKWh = 475
	}
	return e
}

func (e *PowerEstimator) Estimate(op entity.OperationKind, elapsed time.Duration, usage Usage) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	hours := elapsed.Hours()
	grams := hours * (e.deviceWatts / 1000.0) * e.gridGramsPerKWh

	totalTokens := usage.PromptTokens + usage.CompletionTokens
	if totalTokens > 0 && e.gramsPerKiloToken > 0 {
		grams += float64(totalTokens) / 1000.0 * e.gramsPerKiloToken
	}
	if grams < 0 {
		grams = 0
	}
	return grams
}
