package story

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ether-stories-api/internal/application/carbon"
	storycontext "ether-stories-api/internal/application/story/context"
	"ether-stories-api/internal/domain/entity"
	"ether-stories-api/internal/domain/repository"
	"ether-stories-api/pkg/logger"
	"ether-stories-api/pkg/metrics"
)

// Orchestrator 驱动整条故事生成流水线：
// 规划 → 按序生成章节（滚动上下文前向传递）→ 聚合排放 → 归档。
// 章节必须顺序生成：后一章的上下文依赖前一章的产出。
// 除 InvalidRequest 外，调用方总能拿到（可能不完整的）StoryArtifact。
type Orchestrator struct {
	planner   *Planner
	generator *ChapterGenerator
	store     repository.StoryArtifactStore
	recorder  *carbon.Recorder
	progress  ProgressSink
}

func NewOrchestrator(
	planner *Planner,
	generator *ChapterGenerator,
	store repository.StoryArtifactStore,
	recorder *carbon.Recorder,
	progress ProgressSink,
) *Orchestrator {
	return &Orchestrator{
		planner:   planner,
		generator: generator,
		store:     store,
		recorder:  recorder,
		progress:  progress,
	}
}

// GenerateStory 生成一个完整故事。
// 正文失败或取消只发生在章节边界，已完成章节全部保留。
func (o *Orchestrator) GenerateStory(ctx context.Context, req entity.StoryRequest) (*entity.StoryArtifact, error) {
	start := time.Now()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctx = context.WithValue(ctx, logger.StoryIDKey, req.ID)

	o.publish(ctx, ProgressUpdate{StoryID: req.ID, Phase: entity.PhasePlanning, UpdatedAt: time.Now()})

	specs, err := o.planner.Plan(req.DurationMinutes, req.Theme)
	if err != nil {
		metrics.StoryGenerationTotal.WithLabelValues(string(entity.StoryStatusFailed)).Inc()
		o.publish(ctx, ProgressUpdate{StoryID: req.ID, Phase: entity.PhaseFailed, Message: err.Error(), UpdatedAt: time.Now()})
		logger.Warn(ctx, "story planning rejected", "error", err.Error())
		return nil, err
	}

	artifact := &entity.StoryArtifact{
		ID:              req.ID,
		Request:         req,
		PlannedChapters: len(specs),
		CreatedAt:       time.Now(),
	}
	rolling := storycontext.NewRollingStoryContext(req.Theme)
	var chapterEmissions []carbon.ChapterEmission
	stopReason := entity.StopReasonNone

	for _, spec := range specs {
		// 取消只在章节边界生效，保证已完成章节不被破坏
		if ctx.Err() != nil {
			stopReason = entity.StopReasonCancelled
			break
		}

		o.publish(ctx, ProgressUpdate{
			StoryID:      req.ID,
			Phase:        entity.PhaseGenerating,
			ChapterIndex: spec.Index,
			ChapterCount: len(specs),
			UpdatedAt:    time.Now(),
		})

		chapter, records, genErr := o.generator.Generate(ctx, ChapterGenerateInput{
			StoryID:      req.ID,
			Spec:         spec,
			ChapterCount: len(specs),
			Theme:        req.Theme,
			Language:     req.Language,
			VoiceOption:  req.VoiceOption,
			TranslateTo:  req.TranslateTo,
			PriorSummary: rolling.SnapshotForPrompt(),
		})
		for _, r := range records {
			chapterEmissions = append(chapterEmissions, carbon.ChapterEmission{
				ChapterIndex: spec.Index + 1,
				Record:       r,
			})
		}
		if genErr != nil {
			// 失败调用的成本同样归档，保证总量等于全部记录之和
			artifact.FailedEmissions = append(artifact.FailedEmissions, records...)
			if IsCancellation(genErr) {
				stopReason = entity.StopReasonCancelled
			} else {
				stopReason = entity.StopReasonTextGeneration
			}
			logger.Error(ctx, "chapter text generation failed, stopping story",
				"chapter", spec.Index,
				"error", genErr.Error(),
			)
			break
		}

		artifact.Chapters = append(artifact.Chapters, *chapter)
		rolling.AppendChapter(chapter.Text)
	}

	artifact.StopReason = stopReason
	artifact.Emissions = entity.SumEmissions(artifact.AllEmissionRecords())
	completedAt := time.Now()
	artifact.CompletedAt = &completedAt

	// 任何降级（缺章、缺件、提前终止）都归为 partial
	if artifact.Complete() {
		artifact.Status = entity.StoryStatusComplete
	} else {
		artifact.Status = entity.StoryStatusPartial
	}

	status := string(artifact.Status)
	metrics.StoryGenerationTotal.WithLabelValues(status).Inc()
	metrics.StoryGenerationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	metrics.StoryChaptersGenerated.WithLabelValues(status).Observe(float64(len(artifact.Chapters)))

	// 归档与明细落库不受取消影响
	persistCtx := context.WithoutCancel(ctx)
	if o.store != nil {
		if saveErr := o.store.Save(persistCtx, artifact); saveErr != nil {
			logger.Error(ctx, "failed to persist story artifact", "error", saveErr.Error())
		}
	}
	if o.recorder != nil {
		o.recorder.RecordStory(persistCtx, artifact.ID, chapterEmissions)
	}

	phase := entity.PhaseComplete
	if artifact.Status != entity.StoryStatusComplete {
		phase = entity.PhasePartial
	}
	o.publish(persistCtx, ProgressUpdate{
		StoryID:      req.ID,
		Phase:        phase,
		ChapterIndex: len(artifact.Chapters),
		ChapterCount: len(specs),
		UpdatedAt:    time.Now(),
	})

	logger.Info(ctx, "story generation finished",
		"status", status,
		"chapters", len(artifact.Chapters),
		"planned", artifact.PlannedChapters,
		"stop_reason", string(stopReason),
		"emission_grams", artifact.Emissions.TotalGrams,
		"duration", time.Since(start).String(),
	)
	return artifact, nil
}

func (o *Orchestrator) publish(ctx context.Context, update ProgressUpdate) {
	if o.progress == nil {
		return
	}
	if err := o.progress.Publish(ctx, update); err != nil {
		logger.Warn(ctx, "failed to publish progress", "story_id", update.StoryID, "error", err.Error())
	}
}
