package carbon

import (
	"context"

	"ether-stories-api/internal/domain/entity"
	"ether-stories-api/internal/domain/repository"
	"ether-stories-api/pkg/logger"
)

// Recorder 把排放明细落库供后台统计。落库失败只记日志，不影响生成流程。
type Recorder struct {
	repo repository.EmissionEventRepository
}

func NewRecorder(repo repository.EmissionEventRepository) *Recorder {
	return &Recorder{repo: repo}
}

// RecordStory 批量写入一个故事的全部排放明细
func (r *Recorder) RecordStory(ctx context.Context, storyID string, records []ChapterEmission) {
	if r == nil || r.repo == nil || len(records) == 0 {
		return
	}

	events := make([]*entity.EmissionEvent, 0, len(records))
	for _, rec := range records {
		events = append(events, &entity.EmissionEvent{
			StoryID:        storyID,
			ChapterIndex:   rec.ChapterIndex,
			Operation:      rec.Record.Operation,
			Provider:       rec.Record.Provider,
			EstimatedGrams: rec.Record.EstimatedGrams,
			DurationMs:     rec.Record.DurationMs,
			Attempts:       rec.Record.Attempts,
			Succeeded:      rec.Record.Succeeded,
		})
	}
	if err := r.repo.CreateBatch(ctx, events); err != nil {
		logger.Warn(ctx, "failed to persist emission events",
			"story_id", storyID,
			"count", len(events),
			"error", err.Error(),
		)
	}
}

// ChapterEmission 归属到章节的排放记录（章节号 0 表示故事级调用）
type ChapterEmission struct {
	ChapterIndex int
	Record       entity.EmissionRecord
}
