package repository

import (
	"context"

	"wisefido-fields/internal/domain"
)

// ResponseUpsert 单条回答的 upsert 载荷
type ResponseUpsert struct {
	FieldID string
	Value   *string
}

// FieldResponsesRepository 字段回答 Repository 接口
// (user_id, field_id) 复合唯一，重复保存走 upsert 而不是新增
type FieldResponsesRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.FieldResponse, error)
	UpsertMany(ctx context.Context, userID string, upserts []ResponseUpsert) error
}
