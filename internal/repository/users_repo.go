package repository

import (
	"context"

	"wisefido-fields/internal/domain"
)

// UsersRepository 用户查询接口（本服务只读用户）
type UsersRepository interface {
	// GetUser 按 ID 查找；不存在返回 (nil, nil)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}
