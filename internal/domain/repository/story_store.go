// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ether-stories-api/internal/domain/entity"
)

// StoryArtifactStore 故事产物存储边界。
// 编排器只依赖该契约，具体持久化属于外部协作方。
type StoryArtifactStore interface {
	// Save 保存完整产物（含 partial / failed）
	Save(ctx context.Context, artifact *entity.StoryArtifact) error

	// GetByID 根据 ID 获取产物
	GetByID(ctx context.Context, id string) (*entity.StoryArtifact, error)

	// List 按创建时间倒序分页列出产物
	List(ctx context.Context, p Pagination) (*PagedResult[entity.StoryArtifact], error)
}
