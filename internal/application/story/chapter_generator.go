package story

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"ether-stories-api/internal/application/carbon"
	"ether-stories-api/internal/domain/entity"
	appErrors "ether-stories-api/pkg/errors"
	"ether-stories-api/pkg/logger"
	"ether-stories-api/pkg/metrics"
)

// ChapterGenerateInput 单章生成输入
type ChapterGenerateInput struct {
	StoryID      string
	Spec         entity.ChapterSpec
	ChapterCount int

	Theme       string
	Language    string
	VoiceOption string
	TranslateTo []string

	// PriorSummary 前文滚动摘要，首章为空
	PriorSummary string
}

// ChapterGenerator 驱动单章的全部能力调用：
// 正文必须成功；插图、音频、翻译失败只降级该章，不中止故事。
// 正文定稿后三类派生调用相互无依赖，可并发执行。
type ChapterGenerator struct {
	text       TextGenerator
	image      ImageGenerator
	speech     SpeechSynthesizer
	translator Translator
	meter      *carbon.Meter
}

func NewChapterGenerator(
	text TextGenerator,
	image ImageGenerator,
	speech SpeechSynthesizer,
	translator Translator,
	meter *carbon.Meter,
) *ChapterGenerator {
	return &ChapterGenerator{
		text:       text,
		image:      image,
		speech:     speech,
		translator: translator,
		meter:      meter,
	}
}

// Generate 生成一个章节。
// 正文失败时返回 nil 产物和该次调用的排放记录（失败调用同样计量），
// 调用方据此归档成本并停止推进后续章节。
func (g *ChapterGenerator) Generate(ctx context.Context, in ChapterGenerateInput) (*entity.ChapterArtifact, []entity.EmissionRecord, error) {
	var textResult *TextResult
	textRecord, err := g.meter.Measure(ctx, entity.OperationText, "", func(ctx context.Context) (carbon.Usage, error) {
		res, callErr := g.text.GenerateChapter(ctx, TextPrompt{
			Theme:           in.Theme,
			Language:        in.Language,
			SceneHint:       in.Spec.SceneHint,
			ChapterIndex:    in.Spec.Index + 1,
			ChapterCount:    in.ChapterCount,
			TargetWordCount: in.Spec.TargetWordCount,
			PriorSummary:    in.PriorSummary,
		})
		if callErr != nil {
			return carbon.Usage{}, callErr
		}
		textResult = res
		return carbon.Usage{
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.CompletionTokens,
			Attempts:         res.Attempts,
		}, nil
	})
	if err != nil {
		return nil, []entity.EmissionRecord{textRecord}, err
	}
	textRecord.Provider = textResult.Provider

	artifact := &entity.ChapterArtifact{
		Index:     in.Spec.Index,
		Text:      textResult.Content,
		Emissions: []entity.EmissionRecord{textRecord},
	}

	var (
		mu      sync.Mutex
		missing []string
	)
	addRecord := func(rec entity.EmissionRecord) {
		mu.Lock()
		artifact.Emissions = append(artifact.Emissions, rec)
		mu.Unlock()
	}
	markMissing := func(part string, err error) {
		mu.Lock()
		missing = append(missing, part)
		mu.Unlock()
		metrics.ChapterDegradedTotal.WithLabelValues(part).Inc()
		logger.Warn(ctx, "chapter part degraded",
			"story_id", in.StoryID,
			"chapter", in.Spec.Index,
			"part", part,
			"error", err.Error(),
		)
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var res *MediaResult
		rec, callErr := g.meter.Measure(egCtx, entity.OperationImage, "", func(ctx context.Context) (carbon.Usage, error) {
			r, e := g.image.GenerateIllustration(ctx, IllustrationPrompt{
				StoryID:      in.StoryID,
				ChapterIndex: in.Spec.Index + 1,
				Theme:        in.Theme,
				SceneHint:    in.Spec.SceneHint,
				ChapterText:  textResult.Content,
			})
			if e != nil {
				return carbon.Usage{}, e
			}
			res = r
			return carbon.Usage{Attempts: r.Attempts}, nil
		})
		if callErr != nil {
			addRecord(rec)
			markMissing(entity.PartIllustration, callErr)
			return nil
		}
		rec.Provider = res.Provider
		addRecord(rec)
		mu.Lock()
		artifact.IllustrationRef = res.Ref
		mu.Unlock()
		return nil
	})

	eg.Go(func() error {
		var res *MediaResult
		rec, callErr := g.meter.Measure(egCtx, entity.OperationSpeech, "", func(ctx context.Context) (carbon.Usage, error) {
			r, e := g.speech.Synthesize(ctx, SpeechPrompt{
				StoryID:      in.StoryID,
				ChapterIndex: in.Spec.Index + 1,
				Text:         textResult.Content,
				Voice:        in.VoiceOption,
				Language:     in.Language,
			})
			if e != nil {
				return carbon.Usage{}, e
			}
			res = r
			return carbon.Usage{Attempts: r.Attempts}, nil
		})
		if callErr != nil {
			addRecord(rec)
			markMissing(entity.PartAudio, callErr)
			return nil
		}
		rec.Provider = res.Provider
		addRecord(rec)
		mu.Lock()
		artifact.AudioRef = res.Ref
		mu.Unlock()
		return nil
	})

	for _, lang := range in.TranslateTo {
		lang := strings.TrimSpace(lang)
		if lang == "" || strings.EqualFold(lang, in.Language) {
			continue
		}
		eg.Go(func() error {
			var res *TranslationResult
			rec, callErr := g.meter.Measure(egCtx, entity.OperationTranslation, "", func(ctx context.Context) (carbon.Usage, error) {
				r, e := g.translator.Translate(ctx, textResult.Content, in.Language, lang)
				if e != nil {
					return carbon.Usage{}, e
				}
				res = r
				return carbon.Usage{
					PromptTokens:     r.PromptTokens,
					CompletionTokens: r.CompletionTokens,
					Attempts:         r.Attempts,
				}, nil
			})
			if callErr != nil {
				addRecord(rec)
				markMissing(entity.PartTranslation, callErr)
				return nil
			}
			rec.Provider = res.Provider
			addRecord(rec)
			mu.Lock()
			if artifact.Translations == nil {
				artifact.Translations = make(map[string]string)
			}
			artifact.Translations[lang] = res.Text
			mu.Unlock()
			return nil
		})
	}

	// 降级任务都返回 nil，这里只等待全部完成
	_ = eg.Wait()

	// MissingParts 按固定顺序记录，便于断言与展示
	sort.Slice(missing, func(i, j int) bool {
		return partOrder(missing[i]) < partOrder(missing[j])
	})
	artifact.MissingParts = missing

	return artifact, artifact.Emissions, nil
}

func partOrder(part string) int {
	switch part {
	case entity.PartIllustration:
		return 0
	case entity.PartAudio:
		return 1
	default:
		return 2
	}
}

// IsCancellation 判断章节失败是否由取消引起
func IsCancellation(err error) bool {
	return appErrors.IsCode(err, appErrors.CodeCancelled) || errors.Is(err, context.Canceled)
}
