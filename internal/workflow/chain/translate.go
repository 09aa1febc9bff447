package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "ether-stories-api/internal/domain/service"
	wfmodel "ether-stories-api/internal/workflow/model"
	workflowport "ether-stories-api/internal/workflow/port"
	workflowprompt "ether-stories-api/internal/workflow/prompt"
)

// TranslateChain 章节翻译链
type TranslateChain struct {
	factory workflowport.ChatModelFactory
}

func NewTranslateChain(factory workflowport.ChatModelFactory) *TranslateChain {
	return &TranslateChain{factory: factory}
}

func (c *TranslateChain) Invoke(ctx context.Context, in *wfmodel.TranslateInput) (*wfmodel.TranslateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	if strings.TrimSpace(in.TargetLanguage) == "" {
		return nil, fmt.Errorf("target_language is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "translate", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatTranslateMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	opts := make([]model.Option, 0, 1)
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}

	outMsg, err := chatModel.Generate(ctx, msgs, opts...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return nil, fmt.Errorf("empty llm response")
	}

	out := &wfmodel.TranslateOutput{
		Text: strings.TrimSpace(outMsg.Content),
		Meta: wfmodel.LLMUsageMeta{
			Provider:    strings.TrimSpace(in.Provider),
			Model:       strings.TrimSpace(in.Model),
			GeneratedAt: time.Now(),
		},
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		out.Meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		out.Meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	return out, nil
}

func formatTranslateMessages(ctx context.Context, in *wfmodel.TranslateInput) ([]*schema.Message, error) {
	tpl, err := chapterPromptRegistry.ChatTemplate(workflowprompt.PromptTranslateV1)
	if err != nil {
		return nil, err
	}
	source := strings.TrimSpace(in.SourceLanguage)
	if source == "" {
		source = "en"
	}
	vars := map[string]any{
		"source_language": source,
		"target_language": strings.TrimSpace(in.TargetLanguage),
		"text":            strings.TrimSpace(in.Text),
	}
	return tpl.Format(ctx, vars)
}
