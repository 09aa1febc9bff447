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

// EinoTranslator 基于 Eino ChatModel 的章节翻译适配器
type EinoTranslator struct {
	chain    *chain.TranslateChain
	provider string
	model    string
	retry    RetryPolicy
}

func NewEinoTranslator(cfg *config.Config, factory workflowport.ChatModelFactory, retry RetryPolicy) *EinoTranslator {
	provider := cfg.LLM.DefaultProvider
	model := ""
	if pc, ok := cfg.LLM.Providers[provider]; ok {
		model = pc.Model
	}
	return &EinoTranslator{
		chain:    chain.NewTranslateChain(factory),
		provider: provider,
		model:    model,
		retry:    retry,
	}
}

func (t *EinoTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (*story.TranslationResult, error) {
	in := &wfmodel.TranslateInput{
		Text:           text,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Provider:       t.provider,
		Model:          t.model,
	}

	var out *wfmodel.TranslateOutput
	attempts, err := t.retry.Do(ctx, "translation", t.provider, func(ctx context.Context) error {
		o, callErr := t.chain.Invoke(ctx, in)
		if callErr != nil {
			return classifyProviderError(callErr, appErrors.ErrTranslationFailed)
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, &story.CallFailure{Attempts: attempts, Err: err}
	}

	return &story.TranslationResult{
		Text:             out.Text,
		Provider:         t.provider,
		PromptTokens:     out.Meta.PromptTokens,
		CompletionTokens: out.Meta.CompletionTokens,
		Attempts:         attempts,
	}, nil
}
