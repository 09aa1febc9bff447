// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"ether-stories-api/internal/domain/entity"
)

// EmissionEventRepository 排放事件仓储接口
type EmissionEventRepository interface {
	Create(ctx context.Context, event *entity.EmissionEvent) error
	CreateBatch(ctx context.Context, events []*entity.EmissionEvent) error
	SumGramsByStory(ctx context.Context, storyID string) (float64, error)
	SumGramsByOperation(ctx context.Context, startInclusive, endExclusive time.Time) (map[entity.OperationKind]float64, error)
}
