// Package entity 定义领域实体
package entity

// ChapterSpec 规划产出的章节目标：只描述“要生成什么”，不含生成结果。
// Index 从 0 开始且连续，顺序在端到端流程中必须保持。
type ChapterSpec struct {
	Index           int    `json:"index"`
	TargetWordCount int    `json:"target_word_count"`
	SceneHint       string `json:"scene_hint"`
}

// 章节非正文部件名，用于 MissingParts 记录
const (
	PartIllustration = "illustration"
	PartAudio        = "audio"
	PartTranslation  = "translation"
)

// ChapterArtifact 单章生成产物，创建后不可变
type ChapterArtifact struct {
	Index           int               `json:"index"`
	Title           string            `json:"title,omitempty"`
	Text            string            `json:"text"`
	IllustrationRef string            `json:"illustration_ref,omitempty"` // 不透明引用，缺失表示降级
	AudioRef        string            `json:"audio_ref,omitempty"`
	Translations    map[string]string `json:"translations,omitempty"` // lang -> 译文
	MissingParts    []string          `json:"missing_parts,omitempty"`
	Emissions       []EmissionRecord  `json:"emissions,omitempty"`
}

// Complete 正文、插图、音频齐备才算完整章节
func (c *ChapterArtifact) Complete() bool {
	return c.Text != "" && c.IllustrationRef != "" && c.AudioRef != "" && len(c.MissingParts) == 0
}

// Degraded 存在缺失部件
func (c *ChapterArtifact) Degraded() bool {
	return len(c.MissingParts) > 0
}
