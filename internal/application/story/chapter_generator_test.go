package story_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ether-stories-api/internal/application/carbon"
	"ether-stories-api/internal/application/story"
	"ether-stories-api/internal/config"
	"ether-stories-api/internal/domain/entity"
	"ether-stories-api/internal/mocks"
	appErrors "ether-stories-api/pkg/errors"
)

func newTestMeter() *carbon.Meter {
	return carbon.NewMeter(carbon.NewPowerEstimator(config.CarbonConfig{
		DeviceWatts:              350,
		GridIntensityGramsPerKWh: 475,
		GramsPerKiloToken:        0.2,
	}))
}

func chapterInput() story.ChapterGenerateInput {
	return story.ChapterGenerateInput{
		StoryID:      "story-1",
		Spec:         entity.ChapterSpec{Index: 0, TargetWordCount: 225, SceneHint: "a fox finds a map"},
		ChapterCount: 2,
		Theme:        "a brave little fox",
		Language:     "en",
		VoiceOption:  "alloy",
	}
}

func TestChapterGeneratorAllPartsSucceed(t *testing.T) {
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	speechGen := mocks.NewMockSpeechSynthesizer(t)
	translator := mocks.NewMockTranslator(t)

	textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Once upon a time...", Provider: "openai", Attempts: 1}, nil)
	imageGen.On("GenerateIllustration", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "media/chapter_1.png", Provider: "ark", Attempts: 1}, nil)
	speechGen.On("Synthesize", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "media/chapter_1.mp3", Provider: "openai", Attempts: 1}, nil)

	gen := story.NewChapterGenerator(textGen, imageGen, speechGen, translator, newTestMeter())

	chapter, records, err := gen.Generate(context.Background(), chapterInput())
	require.NoError(t, err)
	require.NotNil(t, chapter)

	assert.Equal(t, 0, chapter.Index)
	assert.Equal(t, "Once upon a time...", chapter.Text)
	assert.Equal(t, "media/chapter_1.png", chapter.IllustrationRef)
	assert.Equal(t, "media/chapter_1.mp3", chapter.AudioRef)
	assert.Empty(t, chapter.MissingParts)
	assert.True(t, chapter.Complete())

	// text + image + speech，每次逻辑调用恰好一条记录
	assert.Len(t, records, 3)
	for _, rec := range records {
		assert.True(t, rec.Succeeded)
		assert.GreaterOrEqual(t, rec.EstimatedGrams, 0.0)
		assert.Equal(t, 1, rec.Attempts)
	}
	translator.AssertNotCalled(t, "Translate")
}

func TestChapterGeneratorImageFailureDegrades(t *testing.T) {
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	speechGen := mocks.NewMockSpeechSynthesizer(t)
	translator := mocks.NewMockTranslator(t)

	textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Chapter text.", Provider: "openai", Attempts: 1}, nil)
	imageGen.On("GenerateIllustration", mock.Anything, mock.Anything).
		Return(nil, &story.CallFailure{Attempts: 3, Err: appErrors.ErrProviderUnavailable})
	speechGen.On("Synthesize", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "media/chapter_1.mp3", Provider: "openai", Attempts: 1}, nil)

	gen := story.NewChapterGenerator(textGen, imageGen, speechGen, translator, newTestMeter())

	chapter, records, err := gen.Generate(context.Background(), chapterInput())
	require.NoError(t, err, "image failure must not abort the chapter")
	require.NotNil(t, chapter)

	assert.Empty(t, chapter.IllustrationRef)
	assert.Equal(t, "media/chapter_1.mp3", chapter.AudioRef)
	assert.Equal(t, []string{entity.PartIllustration}, chapter.MissingParts)
	assert.True(t, chapter.Degraded())
	assert.False(t, chapter.Complete())

	// 失败的插图调用同样计量
	assert.Len(t, records, 3)
	var imageRec *entity.EmissionRecord
	for i := range records {
		if records[i].Operation == entity.OperationImage {
			imageRec = &records[i]
		}
	}
	require.NotNil(t, imageRec)
	assert.False(t, imageRec.Succeeded)
	assert.Equal(t, 3, imageRec.Attempts)
}

func TestChapterGeneratorTextFailureAborts(t *testing.T) {
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	speechGen := mocks.NewMockSpeechSynthesizer(t)
	translator := mocks.NewMockTranslator(t)

	textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(nil, &story.CallFailure{Attempts: 3, Err: appErrors.ErrProviderTimeout})

	gen := story.NewChapterGenerator(textGen, imageGen, speechGen, translator, newTestMeter())

	chapter, records, err := gen.Generate(context.Background(), chapterInput())
	require.Error(t, err)
	assert.Nil(t, chapter)

	// 正文失败后不得触发派生调用
	imageGen.AssertNotCalled(t, "GenerateIllustration")
	speechGen.AssertNotCalled(t, "Synthesize")
	translator.AssertNotCalled(t, "Translate")

	// 失败的正文调用留下一条记录，成本不静默丢弃
	require.Len(t, records, 1)
	assert.Equal(t, entity.OperationText, records[0].Operation)
	assert.False(t, records[0].Succeeded)
	assert.Equal(t, 3, records[0].Attempts)
}

func TestChapterGeneratorTranslation(t *testing.T) {
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	speechGen := mocks.NewMockSpeechSynthesizer(t)
	translator := mocks.NewMockTranslator(t)

	textGen.On("GenerateChapter", mock.Anything, mock.Anything).
		Return(&story.TextResult{Content: "Hello chapter.", Provider: "openai", Attempts: 1}, nil)
	imageGen.On("GenerateIllustration", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "i.png", Provider: "ark", Attempts: 1}, nil)
	speechGen.On("Synthesize", mock.Anything, mock.Anything).
		Return(&story.MediaResult{Ref: "a.mp3", Provider: "openai", Attempts: 1}, nil)
	translator.On("Translate", mock.Anything, "Hello chapter.", "en", "fr").
		Return(&story.TranslationResult{Text: "Bonjour chapitre.", Provider: "openai", Attempts: 1}, nil)
	translator.On("Translate", mock.Anything, "Hello chapter.", "en", "de").
		Return(nil, &story.CallFailure{Attempts: 2, Err: appErrors.ErrProviderRejected})

	in := chapterInput()
	// 与生成语言相同的目标语言跳过，失败的目标语言降级
	in.TranslateTo = []string{"fr", "en", "de"}

	gen := story.NewChapterGenerator(textGen, imageGen, speechGen, translator, newTestMeter())

	chapter, records, err := gen.Generate(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, chapter)

	assert.Equal(t, "Bonjour chapitre.", chapter.Translations["fr"])
	_, hasDe := chapter.Translations["de"]
	assert.False(t, hasDe)
	assert.Contains(t, chapter.MissingParts, entity.PartTranslation)

	// text + image + speech + 2 次翻译调用（en 被跳过）
	assert.Len(t, records, 5)
	translator.AssertNumberOfCalls(t, "Translate", 2)
}
