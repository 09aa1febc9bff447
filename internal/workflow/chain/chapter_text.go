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

// ChapterTextChain 章节正文生成链：提示词组装 -> ChatModel 调用
type ChapterTextChain struct {
	factory workflowport.ChatModelFactory
}

func NewChapterTextChain(factory workflowport.ChatModelFactory) *ChapterTextChain {
	return &ChapterTextChain{factory: factory}
}

func (c *ChapterTextChain) Invoke(ctx context.Context, in *wfmodel.ChapterTextInput) (*wfmodel.ChapterTextOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(in.Theme) == "" {
		return nil, fmt.Errorf("theme is required")
	}
	if in.TargetWordCount <= 0 {
		return nil, fmt.Errorf("target_word_count is required")
	}
	if in.ChapterIndex < 1 || in.ChapterIndex > in.ChapterCount {
		return nil, fmt.Errorf("chapter index %d out of range [1,%d]", in.ChapterIndex, in.ChapterCount)
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "chapter_text", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatChapterTextMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildChapterModelOptions(in)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return nil, fmt.Errorf("empty llm response")
	}

	out := &wfmodel.ChapterTextOutput{
		Content: strings.TrimSpace(outMsg.Content),
		Meta: wfmodel.LLMUsageMeta{
			Provider:    strings.TrimSpace(in.Provider),
			Model:       strings.TrimSpace(in.Model),
			GeneratedAt: time.Now(),
		},
	}
	if in.Temperature != nil {
		out.Meta.Temperature = float64(*in.Temperature)
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		out.Meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		out.Meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	return out, nil
}

var chapterPromptRegistry = workflowprompt.NewRegistry()

func formatChapterTextMessages(ctx context.Context, in *wfmodel.ChapterTextInput) ([]*schema.Message, error) {
	tpl, err := chapterPromptRegistry.ChatTemplate(workflowprompt.PromptChapterTextV1)
	if err != nil {
		return nil, err
	}
	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = "en"
	}
	vars := map[string]any{
		"theme":             strings.TrimSpace(in.Theme),
		"language":          language,
		"chapter_number":    in.ChapterIndex,
		"chapter_count":     in.ChapterCount,
		"scene_hint":        strings.TrimSpace(in.SceneHint),
		"prior_summary":     strings.TrimSpace(in.PriorSummary),
		"target_word_count": in.TargetWordCount,
	}
	return tpl.Format(ctx, vars)
}

func buildChapterModelOptions(in *wfmodel.ChapterTextInput) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}
