package providers

import (
	"context"

	"ether-stories-api/internal/application/story"
	"ether-stories-api/internal/config"
	"ether-stories-api/internal/workflow/chain"
	wfmodel "ether-stories-api/internal/workflow/model"
	workflowport "ether-stories-api/internal/workflow/port"
	appErrors "ether-stories-api/pkg/errors"
)

// EinoTextGenerator 基于 Eino ChatModel 的章节正文生成适配器
type EinoTextGenerator struct {
	chain    *chain.ChapterTextChain
	provider string
	model    string
	retry    RetryPolicy
}

func NewEinoTextGenerator(cfg *config.Config, factory workflowport.ChatModelFactory, retry RetryPolicy) *EinoTextGenerator {
	provider := cfg.LLM.DefaultProvider
	model := ""
	if pc, ok := cfg.LLM.Providers[provider]; ok {
		model = pc.Model
	}
	return &EinoTextGenerator{
		chain:    chain.NewChapterTextChain(factory),
		provider: provider,
		model:    model,
		retry:    retry,
	}
}

func (g *EinoTextGenerator) GenerateChapter(ctx context.Context, prompt story.TextPrompt) (*story.TextResult, error) {
	in := &wfmodel.ChapterTextInput{
		Theme:           prompt.Theme,
		Language:        prompt.Language,
		SceneHint:       prompt.SceneHint,
		ChapterIndex:    prompt.ChapterIndex,
		ChapterCount:    prompt.ChapterCount,
		TargetWordCount: prompt.TargetWordCount,
		PriorSummary:    prompt.PriorSummary,
		Provider:        g.provider,
		Model:           g.model,
	}

	var out *wfmodel.ChapterTextOutput
	attempts, err := g.retry.Do(ctx, "text", g.provider, func(ctx context.Context) error {
		o, callErr := g.chain.Invoke(ctx, in)
		if callErr != nil {
			return classifyProviderError(callErr, appErrors.ErrGenerationFailed)
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, &story.CallFailure{Attempts: attempts, Err: err}
	}

	return &story.TextResult{
		Content:          out.Content,
		Provider:         g.provider,
		PromptTokens:     out.Meta.PromptTokens,
		CompletionTokens: out.Meta.CompletionTokens,
		Attempts:         attempts,
	}, nil
}
