// Package entity 定义领域实体
package entity

import (
	"time"
)

// StoryStatus 故事产物状态
type StoryStatus string

const (
	StoryStatusComplete StoryStatus = "complete"
	StoryStatusPartial  StoryStatus = "partial"
	StoryStatusFailed   StoryStatus = "failed"
)

// StopReason 提前终止原因；完整生成时为空
type StopReason string

const (
	StopReasonNone           StopReason = ""
	StopReasonTextGeneration StopReason = "text_generation_failed"
	StopReasonCancelled      StopReason = "cancelled"
)

// GenerationPhase 生成阶段（状态机：planning → generating → 终态）
type GenerationPhase string

const (
	PhasePlanning   GenerationPhase = "planning"
	PhaseGenerating GenerationPhase = "generating"
	PhaseComplete   GenerationPhase = "complete"
	PhasePartial    GenerationPhase = "stopped_partial"
	PhaseFailed     GenerationPhase = "failed"
)

// StoryRequest 故事生成请求，提交后不可变
type StoryRequest struct {
	ID              string   `json:"id"`
	Theme           string   `json:"theme"`
	DurationMinutes int      `json:"duration_minutes"` // 叙述时长，限定 [1,10]
	Language        string   `json:"language"`         // 生成语言
	VoiceOption     string   `json:"voice_option"`
	TranslateTo     []string `json:"translate_to,omitempty"` // 需要额外翻译的目标语言
}

// StoryArtifact 一次完整生成的故事产物
type StoryArtifact struct {
	ID              string           `json:"id" gorm:"type:uuid;primaryKey"`
	Request         StoryRequest     `json:"request" gorm:"type:jsonb;serializer:json"`
	Chapters        []ChapterArtifact `json:"chapters" gorm:"type:jsonb;serializer:json"`
	PlannedChapters int              `json:"planned_chapters"`
	Emissions       EmissionTotal    `json:"emissions" gorm:"type:jsonb;serializer:json"`
	// FailedEmissions 记录未产出章节的调用成本（如正文生成重试耗尽的那次调用）。
	// 计入 Emissions 总量，保证“总量 = 全部记录之和”，失败也不静默丢弃成本。
	FailedEmissions []EmissionRecord `json:"failed_emissions,omitempty" gorm:"type:jsonb;serializer:json"`
	Status          StoryStatus      `json:"status" gorm:"type:varchar(20)"`
	StopReason      StopReason       `json:"stop_reason,omitempty" gorm:"type:varchar(40)"`
	CreatedAt       time.Time        `json:"created_at" gorm:"autoCreateTime"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (StoryArtifact) TableName() string {
	return "story_artifacts"
}

// Complete 检查每个已规划章节是否全部产出且无缺件
func (a *StoryArtifact) Complete() bool {
	if len(a.Chapters) != a.PlannedChapters {
		return false
	}
	for i := range a.Chapters {
		if !a.Chapters[i].Complete() {
			return false
		}
	}
	return a.StopReason == StopReasonNone
}

// AllEmissionRecords 展开产物上挂载的全部排放记录（含失败调用）
func (a *StoryArtifact) AllEmissionRecords() []EmissionRecord {
	var out []EmissionRecord
	for i := range a.Chapters {
		out = append(out, a.Chapters[i].Emissions...)
	}
	out = append(out, a.FailedEmissions...)
	return out
}
