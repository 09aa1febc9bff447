package story

import (
	"context"
	"time"

	"ether-stories-api/internal/domain/entity"
)

// TextPrompt 单章正文生成请求
type TextPrompt struct {
	Theme           string
	Language        string
	SceneHint       string
	ChapterIndex    int
	ChapterCount    int
	TargetWordCount int
	PriorSummary    string
}

// TextResult 单章正文生成结果
type TextResult struct {
	Content          string
	Provider         string
	PromptTokens     int
	CompletionTokens int
	Attempts         int
}

// TextGenerator 章节正文生成端口（必选能力，失败即停止故事）
type TextGenerator interface {
	GenerateChapter(ctx context.Context, prompt TextPrompt) (*TextResult, error)
}

// IllustrationPrompt 章节插图生成请求
type IllustrationPrompt struct {
	StoryID      string
	ChapterIndex int
	Theme        string
	SceneHint    string
	ChapterText  string
}

// MediaResult 媒体产物引用（本地路径或 URL）
type MediaResult struct {
	Ref      string
	Provider string
	Attempts int
}

// ImageGenerator 章节插图生成端口（可降级能力）
type ImageGenerator interface {
	GenerateIllustration(ctx context.Context, prompt IllustrationPrompt) (*MediaResult, error)
}

// SpeechPrompt 章节朗读音频合成请求
type SpeechPrompt struct {
	StoryID      string
	ChapterIndex int
	Text         string
	Voice        string
	Language     string
}

// SpeechSynthesizer 章节朗读音频端口（可降级能力）
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, prompt SpeechPrompt) (*MediaResult, error)
}

// TranslationResult 章节翻译结果
type TranslationResult struct {
	Text             string
	Provider         string
	PromptTokens     int
	CompletionTokens int
	Attempts         int
}

// Translator 章节翻译端口（可降级能力）
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (*TranslationResult, error)
}

// ProgressUpdate 故事生成进度事件
type ProgressUpdate struct {
	StoryID      string                 `json:"story_id"`
	Phase        entity.GenerationPhase `json:"phase"`
	ChapterIndex int                    `json:"chapter_index"`
	ChapterCount int                    `json:"chapter_count"`
	Message      string                 `json:"message,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ProgressSink 进度发布端口。发布失败只记日志，不影响生成流程。
type ProgressSink interface {
	Publish(ctx context.Context, update ProgressUpdate) error
}

// CallFailure 提供商调用重试耗尽后的失败，携带实际尝试次数。
// 排放计量即使在失败时也要记一笔，需要准确的尝试次数。
type CallFailure struct {
	Attempts int
	Err      error
}

func (e *CallFailure) Error() string {
	return e.Err.Error()
}

func (e *CallFailure) Unwrap() error {
	return e.Err
}

// CallAttempts 供排放计量通过 errors.As 读取尝试次数
func (e *CallFailure) CallAttempts() int {
	return e.Attempts
}
