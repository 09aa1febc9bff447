package postgres

import (
	"context"
	"time"

	"ether-stories-api/internal/domain/entity"
	appErrors "ether-stories-api/pkg/errors"
)

// EmissionEventRepository 排放事件仓储的 PostgreSQL 实现
type EmissionEventRepository struct {
	client *Client
}

func NewEmissionEventRepository(client *Client) *EmissionEventRepository {
	return &EmissionEventRepository{client: client}
}

func (r *EmissionEventRepository) Create(ctx context.Context, event *entity.EmissionEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.EmissionEventRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(event).Error; err != nil {
		span.RecordError(err)
		return appErrors.ErrDatabaseError.WithError(err)
	}
	return nil
}

func (r *EmissionEventRepository) CreateBatch(ctx context.Context, events []*entity.EmissionEvent) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "postgres.EmissionEventRepository.CreateBatch")
	defer span.End()

	if err := r.client.db.WithContext(ctx).CreateInBatches(events, 100).Error; err != nil {
		span.RecordError(err)
		return appErrors.ErrDatabaseError.WithError(err)
	}
	return nil
}

func (r *EmissionEventRepository) SumGramsByStory(ctx context.Context, storyID string) (float64, error) {
	ctx, span := tracer.Start(ctx, "postgres.EmissionEventRepository.SumGramsByStory")
	defer span.End()

	var total float64
	err := r.client.db.WithContext(ctx).
		Model(&entity.EmissionEvent{}).
		Where("story_id = ?", storyID).
		Select("COALESCE(SUM(estimated_grams),0)").
		Scan(&total).Error
	if err != nil {
		span.RecordError(err)
		return 0, appErrors.ErrDatabaseError.WithError(err)
	}
	return total, nil
}

func (r *EmissionEventRepository) SumGramsByOperation(ctx context.Context, startInclusive, endExclusive time.Time) (map[entity.OperationKind]float64, error) {
	ctx, span := tracer.Start(ctx, "postgres.EmissionEventRepository.SumGramsByOperation")
	defer span.End()

	var rows []struct {
		Operation entity.OperationKind
		Grams     float64
	}
	err := r.client.db.WithContext(ctx).
		Model(&entity.EmissionEvent{}).
		Where("created_at >= ? AND created_at < ?", startInclusive, endExclusive).
		Select("operation, COALESCE(SUM(estimated_grams),0) AS grams").
		Group("operation").
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, appErrors.ErrDatabaseError.WithError(err)
	}

	out := make(map[entity.OperationKind]float64, len(rows))
	for _, row := range rows {
		out[row.Operation] = row.Grams
	}
	return out, nil
}
