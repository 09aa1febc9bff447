package story

import (
	"context"
	"encoding/json"
	"time"

	"ether-stories-api/internal/domain/entity"
	"ether-stories-api/internal/domain/repository"
	appErrors "ether-stories-api/pkg/errors"
)

const artifactCacheTTL = 10 * time.Minute

// ArtifactCache 产物读缓存端口
type ArtifactCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

// QueryService 故事产物读服务：读多写少，走 Redis 读缓存
type QueryService struct {
	store repository.StoryArtifactStore
	cache ArtifactCache
}

func NewQueryService(store repository.StoryArtifactStore, cache ArtifactCache) *QueryService {
	return &QueryService{store: store, cache: cache}
}

// GetStory 按 ID 读取故事产物
func (s *QueryService) GetStory(ctx context.Context, id string) (*entity.StoryArtifact, error) {
	if id == "" {
		return nil, appErrors.ErrInvalidRequest.WithDetail("story id is required")
	}
	if s.cache == nil {
		return s.store.GetByID(ctx, id)
	}

	raw, err := s.cache.GetOrLoadSafe(ctx, "story:artifact:"+id, artifactCacheTTL, func() (interface{}, error) {
		return s.store.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	var artifact entity.StoryArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, appErrors.ErrCacheError.WithError(err)
	}
	return &artifact, nil
}

// ListStories 分页列出故事产物，列表页时效性要求低，不走缓存
func (s *QueryService) ListStories(ctx context.Context, page, pageSize int) (*repository.PagedResult[entity.StoryArtifact], error) {
	return s.store.List(ctx, repository.NewPagination(page, pageSize))
}
