package story_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ether-stories-api/internal/application/story"
	"ether-stories-api/internal/domain/entity"
	"ether-stories-api/internal/mocks"
	appErrors "ether-stories-api/pkg/errors"
)

type orchestratorFixture struct {
	textGen   *mocks.MockTextGenerator
	imageGen  *mocks.MockImageGenerator
	speechGen *mocks.MockSpeechSynthesizer
	translate *mocks.MockTranslator
	store     *mocks.MockStoryArtifactStore
	progress  *mocks.MockProgressSink
	orch      *story.Orchestrator
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	f := &orchestratorFixture{
		textGen:   mocks.NewMockTextGenerator(t),
		imageGen:  mocks.NewMockImageGenerator(t),
		speechGen: mocks.NewMockSpeechSynthesizer(t),
		translate: mocks.NewMockTranslator(t),
		store:     mocks.NewMockStoryArtifactStore(t),
		progress:  mocks.NewMockProgressSink(t),
	}
	generator := story.NewChapterGenerator(f.textGen, f.imageGen, f.speechGen, f.translate, newTestMeter())
	f.orch = story.NewOrchestrator(story.NewPlanner(), generator, f.store, nil, f.progress)
	return f
}

func (f *orchestratorFixture) expectHappyMedia() {
	f.imageGen.On("GenerateIllustration", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "i.png", Provider: "ark", Attempts: 1}, nil).Maybe()
	f.speechGen.On("Synthesize", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "a.mp3", Provider: "openai", Attempts: 1}, nil).Maybe()
}

func (f *orchestratorFixture) expectPersistence() {
	f.store.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.progress.On("Publish", mock.Anything, mock.Anything).Return(nil)
}

func TestOrchestratorCompleteStory(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Once upon a time.", Provider: "openai", PromptTokens: 120, CompletionTokens: 300, Attempts: 1}, nil)
	f.expectHappyMedia()
	f.expectPersistence()

	artifact, err := f.orch.GenerateStory(context.Background(), entity.StoryRequest{
		Theme:           "a brave little fox",
		DurationMinutes: 3,
		Language:        "en",
	})
	require.NoError(t, err)
	require.NotNil(t, artifact)

	// 3 分钟 → 2 章
	assert.Equal(t, 2, artifact.PlannedChapters)
	require.Len(t, artifact.Chapters, 2)
	assert.Equal(t, entity.StoryStatusComplete, artifact.Status)
	assert.Equal(t, entity.StopReasonNone, artifact.StopReason)
	assert.NotEmpty(t, artifact.ID)
	assert.NotNil(t, artifact.CompletedAt)

	// 章节按序产出，索引连续
	for i, ch := range artifact.Chapters {
		assert.Equal(t, i, ch.Index)
		assert.True(t, ch.Complete())
	}

	f.store.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrchestratorTextFailureMidStoryKeepsEarlierChapters(t *testing.T) {
	f := newOrchestratorFixture(t)
	// 5 分钟 → 3 章，第 2 章正文失败
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Chapter one.", Provider: "openai", Attempts: 1}, nil).Once()
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(nil, &story.CallFailure{Attempts: 3, Err: appErrors.ErrProviderTimeout}).Once()
	f.expectHappyMedia()
	f.expectPersistence()

	artifact, err := f.orch.GenerateStory(context.Background(), entity.StoryRequest{
		Theme:           "the moon garden",
		DurationMinutes: 5,
		Language:        "en",
	})
	require.NoError(t, err, "mid-story failure still returns the partial artifact")
	require.NotNil(t, artifact)

	assert.Equal(t, 3, artifact.PlannedChapters)
	require.Len(t, artifact.Chapters, 1)
	assert.Equal(t, "Chapter one.", artifact.Chapters[0].Text)
	assert.Equal(t, entity.StoryStatusPartial, artifact.Status)
	assert.Equal(t, entity.StopReasonTextGeneration, artifact.StopReason)

	// 失败的那次正文调用也归档计量
	require.Len(t, artifact.FailedEmissions, 1)
	assert.False(t, artifact.FailedEmissions[0].Succeeded)
	assert.Equal(t, 3, artifact.FailedEmissions[0].Attempts)

	f.textGen.AssertNumberOfCalls(t, "GenerateChapter", 2)
}

func TestOrchestratorDegradedChapterYieldsPartialStory(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Chapter text.", Provider: "openai", Attempts: 1}, nil)
	// 首章插图失败，其余成功
	f.imageGen.On("GenerateIllustration", mock.Anything, mock.Anything).
		Return(nil, &story.CallFailure{Attempts: 3, Err: appErrors.ErrProviderUnavailable}).Once()
	f.imageGen.On("GenerateIllustration", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "i.png", Provider: "ark", Attempts: 1}, nil)
	f.speechGen.On("Synthesize", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "a.mp3", Provider: "openai", Attempts: 1}, nil)
	f.expectPersistence()

	artifact, err := f.orch.GenerateStory(context.Background(), entity.StoryRequest{
		Theme:           "a snail who dreams of flying",
		DurationMinutes: 5,
		Language:        "en",
	})
	require.NoError(t, err)
	require.NotNil(t, artifact)

	// 插图降级不影响后续章节推进
	require.Len(t, artifact.Chapters, 3)
	assert.Equal(t, entity.StoryStatusPartial, artifact.Status)
	assert.Equal(t, entity.StopReasonNone, artifact.StopReason)
	assert.Equal(t, []string{entity.PartIllustration}, artifact.Chapters[0].MissingParts)
	assert.True(t, artifact.Chapters[1].Complete())
	assert.True(t, artifact.Chapters[2].Complete())
}

func TestOrchestratorEmissionTotalMatchesRecords(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Chapter one.", Provider: "openai", PromptTokens: 100, CompletionTokens: 250, Attempts: 1}, nil).Once()
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(nil, &story.CallFailure{Attempts: 2, Err: appErrors.ErrProviderUnavailable}).Once()
	f.expectHappyMedia()
	f.expectPersistence()

	artifact, err := f.orch.GenerateStory(context.Background(), entity.StoryRequest{
		Theme:           "the lighthouse cat",
		DurationMinutes: 3,
		Language:        "en",
	})
	require.NoError(t, err)
	require.NotNil(t, artifact)

	records := artifact.AllEmissionRecords()
	var sum float64
	for _, r := range records {
		assert.GreaterOrEqual(t, r.EstimatedGrams, 0.0)
		sum += r.EstimatedGrams
	}
	assert.InDelta(t, sum, artifact.Emissions.TotalGrams, 1e-9,
		"total grams must equal the sum over every record, failed calls included")
	assert.Equal(t, len(records), artifact.Emissions.Calls)
}

func TestOrchestratorInvalidRequest(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.progress.On("Publish", mock.Anything, mock.Anything).Return(nil)

	artifact, err := f.orch.GenerateStory(context.Background(), entity.StoryRequest{
		Theme:           "too long",
		DurationMinutes: 11,
		Language:        "en",
	})
	require.Error(t, err)
	assert.Nil(t, artifact, "invalid requests produce no artifact")
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidRequest))

	f.textGen.AssertNotCalled(t, "GenerateChapter")
	f.store.AssertNotCalled(t, "Save")
}

func TestOrchestratorCancellationAtChapterBoundary(t *testing.T) {
	f := newOrchestratorFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	// 首章完成后取消，第二章不得开始
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&story.TextResult{Content: "Chapter one.", Provider: "openai", Attempts: 1}, nil).Once()
	f.expectHappyMedia()
	f.expectPersistence()

	artifact, err := f.orch.GenerateStory(ctx, entity.StoryRequest{
		Theme:           "the paper boat",
		DurationMinutes: 5,
		Language:        "en",
	})
	require.NoError(t, err, "cancellation still returns the partial artifact")
	require.NotNil(t, artifact)

	assert.Equal(t, entity.StoryStatusPartial, artifact.Status)
	assert.Equal(t, entity.StopReasonCancelled, artifact.StopReason)
	assert.Len(t, artifact.Chapters, 1, "completed chapters survive cancellation")
	f.textGen.AssertNumberOfCalls(t, "GenerateChapter", 1)
	f.store.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrchestratorProgressPhases(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Chapter text.", Provider: "openai", Attempts: 1}, nil)
	f.expectHappyMedia()
	f.store.On("Save", mock.Anything, mock.Anything).Return(nil)

	var updates []story.ProgressUpdate
	f.progress.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			updates = append(updates, args.Get(1).(story.ProgressUpdate))
		}).
		Return(nil)

	_, err := f.orch.GenerateStory(context.Background(), entity.StoryRequest{
		Theme:           "the paper boat",
		DurationMinutes: 5,
		Language:        "en",
	})
	require.NoError(t, err)

	// planning → 每章一次 generating → 终态
	require.Len(t, updates, 5)
	assert.Equal(t, entity.PhasePlanning, updates[0].Phase)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, entity.PhaseGenerating, updates[i].Phase)
		assert.Equal(t, i-1, updates[i].ChapterIndex, "chapter indices must advance monotonically")
	}
	assert.Equal(t, entity.PhaseComplete, updates[4].Phase)
}

func TestOrchestratorAssignsStoryID(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Short story.", Provider: "openai", Attempts: 1}, nil)
	f.expectHappyMedia()
	f.expectPersistence()

	artifact, err := f.orch.GenerateStory(context.Background(), entity.StoryRequest{
		ID:              "preassigned-id",
		Theme:           "the red balloon",
		DurationMinutes: 1,
		Language:        "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "preassigned-id", artifact.ID)
	assert.Equal(t, 1, artifact.PlannedChapters)
}
