// Package entity 定义领域实体
package entity

import "time"

// OperationKind 产生排放的 AI 操作类型
type OperationKind string

const (
	OperationText        OperationKind = "text"
	OperationImage       OperationKind = "image"
	OperationSpeech      OperationKind = "speech"
	OperationTranslation OperationKind = "translation"
)

// EmissionRecord 单次提供商调用的碳成本归因。
// 一次逻辑调用（含其内部全部重试）只产生一条记录，Attempts 记录实际尝试次数。
type EmissionRecord struct {
	Operation      OperationKind `json:"operation"`
	Provider       string        `json:"provider,omitempty"`
	EstimatedGrams float64       `json:"estimated_grams"` // 非负，单位 g CO2e
	DurationMs     int64         `json:"duration_ms"`
	Attempts       int           `json:"attempts"`
	Succeeded      bool          `json:"succeeded"`
}

// EmissionTotal 按操作类型与总量聚合的故事级排放
type EmissionTotal struct {
	ByOperation map[OperationKind]float64 `json:"by_operation"`
	TotalGrams  float64                   `json:"total_grams"`
	Calls       int                       `json:"calls"`
}

// SumEmissions 由明细记录聚合总量；总量恒等于全部记录之和
func SumEmissions(records []EmissionRecord) EmissionTotal {
	total := EmissionTotal{
		ByOperation: make(map[OperationKind]float64),
	}
	for _, r := range records {
		total.ByOperation[r.Operation] += r.EstimatedGrams
		total.TotalGrams += r.EstimatedGrams
		total.Calls++
	}
	return total
}

// EmissionEvent 持久化用的排放事件（平铺行，供后台统计）
type EmissionEvent struct {
	ID             string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoryID        string        `json:"story_id" gorm:"type:uuid;index"`
	ChapterIndex   int           `json:"chapter_index"`
	Operation      OperationKind `json:"operation" gorm:"type:varchar(20);index"`
	Provider       string        `json:"provider,omitempty" gorm:"type:varchar(64)"`
	EstimatedGrams float64       `json:"estimated_grams"`
	DurationMs     int64         `json:"duration_ms"`
	Attempts       int           `json:"attempts"`
	Succeeded      bool          `json:"succeeded"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (EmissionEvent) TableName() string {
	return "emission_events"
}
