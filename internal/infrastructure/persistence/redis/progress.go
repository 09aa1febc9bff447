package redis

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ether-stories-api/internal/application/story"
	appErrors "ether-stories-api/pkg/errors"
)

// 进度键保留时长：终态写入后仍可被前端轮询一段时间
const progressTTL = 24 * time.Hour

// ProgressStore ProgressSink 的 Redis 实现。
// 每个故事一个键，整值覆盖写，读端拿到的永远是最新进度。
type ProgressStore struct {
	client *Client
}

func NewProgressStore(client *Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func progressKey(storyID string) string {
	return "story:progress:" + storyID
}

func (s *ProgressStore) Publish(ctx context.Context, update story.ProgressUpdate) error {
	ctx, span := tracer.Start(ctx, "redis.ProgressStore.Publish",
		trace.WithAttributes(
			attribute.String("story.id", update.StoryID),
			attribute.String("story.phase", string(update.Phase)),
		))
	defer span.End()

	payload, err := json.Marshal(update)
	if err != nil {
		span.RecordError(err)
		return appErrors.ErrCacheError.WithError(err)
	}
	if err := s.client.rdb.Set(ctx, progressKey(update.StoryID), payload, progressTTL).Err(); err != nil {
		span.RecordError(err)
		return appErrors.ErrCacheError.WithError(err)
	}
	return nil
}

// Get 读取最新进度；无记录时返回 ErrNotFound
func (s *ProgressStore) Get(ctx context.Context, storyID string) (*story.ProgressUpdate, error) {
	ctx, span := tracer.Start(ctx, "redis.ProgressStore.Get",
		trace.WithAttributes(attribute.String("story.id", storyID)))
	defer span.End()

	raw, err := s.client.rdb.Get(ctx, progressKey(storyID)).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, appErrors.ErrNotFound.WithDetail("progress for story " + storyID)
		}
		span.RecordError(err)
		return nil, appErrors.ErrCacheError.WithError(err)
	}

	var update story.ProgressUpdate
	if err := json.Unmarshal(raw, &update); err != nil {
		span.RecordError(err)
		return nil, appErrors.ErrCacheError.WithError(err)
	}
	return &update, nil
}
