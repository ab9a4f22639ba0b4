package repository

import (
	"context"
	"sync"

	"wisefido-fields/internal/domain"
)

// MemorySubscriptionsRepo in-memory 订阅仓储
// 本地开发和 service 测试用：SetSubscription / SetPlanFeatures 直接播种数据
type MemorySubscriptionsRepo struct {
	mu           sync.RWMutex
	byUser       map[string]domain.Subscription // userID -> current subscription
	planFeatures map[string][]string            // plan slug -> feature keys
}

func NewMemorySubscriptionsRepo() *MemorySubscriptionsRepo {
	return &MemorySubscriptionsRepo{
		byUser:       map[string]domain.Subscription{},
		planFeatures: map[string][]string{},
	}
}

var _ SubscriptionsRepository = (*MemorySubscriptionsRepo)(nil)

func (r *MemorySubscriptionsRepo) SetSubscription(userID string, sub domain.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = sub
}

func (r *MemorySubscriptionsRepo) RemoveSubscription(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
}

func (r *MemorySubscriptionsRepo) SetPlanFeatures(planSlug string, features []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.planFeatures[planSlug] = features
}

func (r *MemorySubscriptionsRepo) FindCurrentByUser(_ context.Context, userID string) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byUser[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *MemorySubscriptionsRepo) PlanHasFeature(_ context.Context, planSlug, featureKey string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.planFeatures[planSlug] {
		if f == featureKey {
			return true, nil
		}
	}
	return false, nil
}
