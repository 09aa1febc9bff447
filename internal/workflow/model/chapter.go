package model

import "time"

// LLMUsageMeta 单次 LLM 调用的用量元数据
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Temperature      float64
	GeneratedAt      time.Time
}

// ChapterTextInput 章节正文生成输入。
// PriorSummary 携带前文滚动摘要，保证跨章节叙事连贯。
type ChapterTextInput struct {
	Theme     string
	Language  string
	SceneHint string

	ChapterIndex    int
	ChapterCount    int
	TargetWordCount int

	PriorSummary string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// ChapterTextOutput 章节正文生成输出
type ChapterTextOutput struct {
	Content string
	Meta    LLMUsageMeta
}

// TranslateInput 章节翻译输入
type TranslateInput struct {
	Text           string
	SourceLanguage string
	TargetLanguage string

	Provider string
	Model    string
}

// TranslateOutput 章节翻译输出
type TranslateOutput struct {
	Text string
	Meta LLMUsageMeta
}
