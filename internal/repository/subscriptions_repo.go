package repository

import (
	"context"

	"wisefido-fields/internal/domain"
)

// SubscriptionsRepository 订阅/套餐查询接口
// 由 Postgres 或外部计费服务（billing_subscriptions.go）实现
type SubscriptionsRepository interface {
	// FindCurrentByUser 返回用户当前订阅（JOIN plan）；没有订阅返回 (nil, nil)
	FindCurrentByUser(ctx context.Context, userID string) (*domain.Subscription, error)
	// PlanHasFeature 判断套餐是否包含指定 feature
	PlanHasFeature(ctx context.Context, planSlug, featureKey string) (bool, error)
}
