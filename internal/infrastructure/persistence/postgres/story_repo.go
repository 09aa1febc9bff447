package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ether-stories-api/internal/domain/entity"
	"ether-stories-api/internal/domain/repository"
	appErrors "ether-stories-api/pkg/errors"
)

// StoryArtifactRepository StoryArtifactStore 的 PostgreSQL 实现
type StoryArtifactRepository struct {
	client *Client
}

func NewStoryArtifactRepository(client *Client) *StoryArtifactRepository {
	return &StoryArtifactRepository{client: client}
}

// Save 幂等保存：同一 ID 重复提交时整行覆盖
func (r *StoryArtifactRepository) Save(ctx context.Context, artifact *entity.StoryArtifact) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryArtifactRepository.Save")
	defer span.End()

	err := r.client.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(artifact).Error
	if err != nil {
		span.RecordError(err)
		return appErrors.ErrDatabaseError.WithError(err)
	}
	return nil
}

func (r *StoryArtifactRepository) GetByID(ctx context.Context, id string) (*entity.StoryArtifact, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryArtifactRepository.GetByID")
	defer span.End()

	var artifact entity.StoryArtifact
	err := r.client.db.WithContext(ctx).
		Where("id = ?", id).
		First(&artifact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrNotFound.WithDetail("story " + id)
		}
		span.RecordError(err)
		return nil, appErrors.ErrDatabaseError.WithError(err)
	}
	return &artifact, nil
}

// List 按创建时间倒序分页
func (r *StoryArtifactRepository) List(ctx context.Context, p repository.Pagination) (*repository.PagedResult[entity.StoryArtifact], error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryArtifactRepository.List")
	defer span.End()

	var total int64
	if err := r.client.db.WithContext(ctx).
		Model(&entity.StoryArtifact{}).
		Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, appErrors.ErrDatabaseError.WithError(err)
	}

	var items []entity.StoryArtifact
	if err := r.client.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&items).Error; err != nil {
		span.RecordError(err)
		return nil, appErrors.ErrDatabaseError.WithError(err)
	}

	return repository.NewPagedResult(items, total, p), nil
}
